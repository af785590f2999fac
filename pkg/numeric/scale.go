package numeric

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the power of ten a statement's figures are presented in.
type Scale int

const (
	Ones      Scale = 0
	Thousands Scale = 3
	Millions  Scale = 6
	Billions  Scale = 9
)

func (s Scale) String() string {
	switch s {
	case Ones:
		return "ones"
	case Thousands:
		return "thousands"
	case Millions:
		return "millions"
	case Billions:
		return "billions"
	}
	return fmt.Sprintf("1e%d", int(s))
}

// ParseScale reads a configured scale name.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ones", "units":
		return Ones, nil
	case "thousands":
		return Thousands, nil
	case "millions":
		return Millions, nil
	case "billions":
		return Billions, nil
	}
	return Ones, fmt.Errorf("unknown scale %q", s)
}

func (s *Scale) UnmarshalText(b []byte) error {
	v, err := ParseScale(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Scale) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var scaleHints = []struct {
	re    *regexp.Regexp
	scale Scale
}{
	{regexp.MustCompile(`(?i)\bin\s+billions\b|\bbillions\s+of\b`), Billions},
	{regexp.MustCompile(`(?i)\bin\s+millions\b|\bmillions\s+of\b|\(\s*[$€£¥]?\s*m{1,2}\s*\)`), Millions},
	{regexp.MustCompile(`(?i)\bin\s+thousands\b|\bthousands\s+of\b|\$\s*000s?\b|'000s?\b`), Thousands},
}

// DetectScale finds a presentation note such as "(In millions, except per
// share amounts)" in heading or caption text.
func DetectScale(text string) (Scale, bool) {
	for _, h := range scaleHints {
		if h.re.MatchString(text) {
			return h.scale, true
		}
	}
	return Ones, false
}

var currencyHints = []struct {
	re   *regexp.Regexp
	code string
}{
	{regexp.MustCompile(`(?i)\b(usd|us\s*dollars|u\.s\.\s*dollars)\b|us\$`), "USD"},
	{regexp.MustCompile(`(?i)\b(eur|euros?)\b|€`), "EUR"},
	{regexp.MustCompile(`(?i)\b(gbp|pounds\s+sterling)\b|£`), "GBP"},
	{regexp.MustCompile(`(?i)\b(jpy|yen)\b|¥`), "JPY"},
	{regexp.MustCompile(`(?i)\b(cny|rmb|renminbi)\b`), "CNY"},
	{regexp.MustCompile(`(?i)\b(twd|nt\$)`), "TWD"},
	{regexp.MustCompile(`(?i)\b(krw|won)\b|₩`), "KRW"},
	{regexp.MustCompile(`(?i)\bdollars\b|\$`), "USD"},
}

// DetectCurrency names the ISO currency a heading or caption mentions.
func DetectCurrency(text string) (string, bool) {
	for _, h := range currencyHints {
		if h.re.MatchString(text) {
			return h.code, true
		}
	}
	return "", false
}

// Convert re-expresses v, presented in scale from, in scale to.
func Convert(v float64, from, to Scale) float64 {
	if from == to {
		return v
	}
	return decimal.NewFromFloat(v).Shift(int32(from - to)).InexactFloat64()
}
