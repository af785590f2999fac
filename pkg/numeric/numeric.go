// Package numeric turns the text of a statement cell into a number.
//
// Malformed cells are common: footnote glyphs, split currency symbols, dashes
// standing in for zero-or-nothing. Parse is therefore total; anything it
// cannot read is reported as absent rather than as an error.
package numeric

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Parser reads cell text into values expressed in Base units.
type Parser struct {
	// Base is the reporting unit magnitude words are converted into:
	// with Base=Millions, "$1.2 billion" reads as 1200.
	Base Scale
}

// Default reads values in millions, the unit most statements are presented in.
var Default = Parser{Base: Millions}

// Parse is Default.Parse.
func Parse(text string) (float64, bool) {
	return Default.Parse(text)
}

var (
	currencyCodes = regexp.MustCompile(`(?i)(\bus\$|\b(usd|eur|gbp|jpy|cny|rmb|chf|cad|aud|krw|twd|inr)\b)`)
	magnitude     = regexp.MustCompile(`^(\d*\.?\d+)\s*(billion|bn|b|million|mm|mn|m|thousand|k)\b`)
	plainNumber   = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
	dashes        = "-—–‒−"
)

// magnitudeFigure is a whole cell such as "$1.2 billion" once stripped.
// Single-letter abbreviations are left out: "3M" is as likely a name.
var magnitudeFigure = regexp.MustCompile(`^\(?[-—–‒−]?\d[\d,]*(\.\d+)?(billion|bn|million|mm|mn|thousand)\)?$`)

// Parse converts cell text to a signed number, or reports absent.
//
// Rules, in order: currency symbols and whitespace are stripped; empty text
// and standalone dashes are absent; parentheses (or a leading minus) negate;
// thousands separators are dropped; a magnitude word scales the leading
// decimal into p.Base and rounds it; otherwise plain digits with an optional
// decimal point are read. Exponents, NaN and infinities are absent.
func (p Parser) Parse(text string) (float64, bool) {
	s := strip(text)
	if s == "" || isDashes(s) {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") || strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	if r := firstRune(s); r != 0 && strings.ContainsRune(dashes, r) {
		negative = !negative
		s = strings.TrimLeft(s, dashes)
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.Contains(s, "%") {
		return 0, false
	}

	if m := magnitude.FindStringSubmatch(strings.ToLower(s)); m != nil {
		d, err := decimal.NewFromString(m[1])
		if err != nil {
			return 0, false
		}
		d = d.Shift(int32(wordScale(m[2]) - p.Base)).Round(0)
		if negative {
			d = d.Neg()
		}
		return d.InexactFloat64(), true
	}

	if !plainNumber.MatchString(s) {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if negative {
			i = -i
		}
		return float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

// HasMagnitude reports whether text is a single figure written with a
// magnitude word, such as "$1.2 billion" or "(300 million)".
func HasMagnitude(text string) bool {
	return magnitudeFigure.MatchString(strings.ToLower(strip(text)))
}

// MagnitudeWord reports whether a standalone token is a magnitude word
// qualifying the figure before it, as in "$1.2 billion".
func MagnitudeWord(tok string) bool {
	switch strings.ToLower(strings.TrimRight(tok, ")")) {
	case "billion", "bn", "million", "mm", "mn", "thousand":
		return true
	}
	return false
}

// Blank reports text that Parse treats as absent on purpose: nothing at all,
// or a dash standing in for a figure.
func Blank(text string) bool {
	s := strip(text)
	return s == "" || isDashes(s)
}

func strip(text string) string {
	s := currencyCodes.ReplaceAllString(text, "")
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case strings.ContainsRune("$€£¥₩", r):
			return -1
		}
		return r
	}, s)
}

func wordScale(word string) Scale {
	switch word {
	case "billion", "bn", "b":
		return Billions
	case "million", "mm", "mn", "m":
		return Millions
	case "thousand", "k":
		return Thousands
	}
	return Ones
}

func isDashes(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(dashes, r) {
			return false
		}
	}
	return true
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// LooksNumeric reports whether a cell holds nothing but number-like glyphs:
// digits, separators, currency symbols, parentheses and dashes. Such a cell
// is a value candidate even without a right-alignment hint.
func LooksNumeric(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		if strings.ContainsRune("$€£¥₩,.()%"+dashes, r) {
			continue
		}
		return false
	}
	return true
}
