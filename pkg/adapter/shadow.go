package adapter

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/grid"
	"github.com/saranrapjs/quarterly-statements/pkg/ixbrl"
)

// ShadowSignature describes the styling a shadow text layer is recognized
// by. It is reported in diagnostics when a deck yields no hidden text.
const ShadowSignature = "font-size<=1px, color matching background, transparent color or opacity:0"

// adaptShadow keeps only the text of invisible elements: presentation decks
// render their slides as images and carry the numbers in an accessibility
// layer styled so that it never shows. Visible text is decoration.
func adaptShadow(b []byte) (*grid.Grid, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	sheet := parseStylesheet(doc.Find("style").Text())

	var lines []string
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if !sheet.hidden(s) || s.Parents().FilterFunction(func(_ int, p *goquery.Selection) bool {
			return sheet.hidden(p)
		}).Length() > 0 {
			return
		}
		lines = append(lines, strings.Split(ixbrl.HTMLText(s.Get(0)), "\n")...)
	})
	return FromLines(lines, filing.ShadowDeck), nil
}

type rule struct {
	tag, class, id string
	decls          map[string]string
}

type stylesheet []rule

var (
	cssComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssRule    = regexp.MustCompile(`([^{}]+)\{([^{}]*)\}`)
	cssSimple  = regexp.MustCompile(`^([a-z0-9]*)(?:([.#])([\w-]+))?$`)
)

// parseStylesheet understands the simple selectors deck exporters emit:
// tag, .class, tag.class and #id. Anything else is ignored.
func parseStylesheet(css string) stylesheet {
	var sheet stylesheet
	css = cssComment.ReplaceAllString(css, "")
	for _, m := range cssRule.FindAllStringSubmatch(css, -1) {
		decls := parseDeclarations(m[2])
		for _, sel := range strings.Split(m[1], ",") {
			sm := cssSimple.FindStringSubmatch(strings.ToLower(strings.TrimSpace(sel)))
			if sm == nil || (sm[1] == "" && sm[3] == "") {
				continue
			}
			r := rule{tag: sm[1], decls: decls}
			switch sm[2] {
			case ".":
				r.class = sm[3]
			case "#":
				r.id = sm[3]
			}
			sheet = append(sheet, r)
		}
	}
	return sheet
}

func (r rule) matches(s *goquery.Selection) bool {
	if r.tag != "" && goquery.NodeName(s) != r.tag {
		return false
	}
	if r.class != "" && !s.HasClass(r.class) {
		return false
	}
	if r.id != "" {
		id, _ := s.Attr("id")
		if strings.ToLower(id) != r.id {
			return false
		}
	}
	return true
}

// style is the element's cascaded declarations: matching rules in sheet
// order, then the inline style attribute.
func (sheet stylesheet) style(s *goquery.Selection) map[string]string {
	decls := map[string]string{}
	for _, r := range sheet {
		if r.matches(s) {
			for k, v := range r.decls {
				decls[k] = v
			}
		}
	}
	inline, _ := s.Attr("style")
	for k, v := range parseDeclarations(inline) {
		decls[k] = v
	}
	return decls
}

func (sheet stylesheet) hidden(s *goquery.Selection) bool {
	decls := sheet.style(s)
	if v, ok := decls["font-size"]; ok {
		if pt, ok := lengthPt(v); ok && pt/0.75 <= 1 {
			return true
		}
	}
	if v, ok := decls["opacity"]; ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f <= 0 {
			return true
		}
	}
	color, ok := decls["color"]
	if !ok {
		return false
	}
	color = normColor(color)
	if color == "transparent" {
		return true
	}
	return color != "" && color == sheet.background(s, decls)
}

// background is the nearest declared background color of the element or
// its ancestors.
func (sheet stylesheet) background(s *goquery.Selection, decls map[string]string) string {
	if bg := backgroundOf(decls); bg != "" {
		return bg
	}
	bg := ""
	s.Parents().EachWithBreak(func(_ int, p *goquery.Selection) bool {
		bg = backgroundOf(sheet.style(p))
		return bg == ""
	})
	return bg
}

func backgroundOf(decls map[string]string) string {
	if v, ok := decls["background-color"]; ok {
		return normColor(v)
	}
	if v, ok := decls["background"]; ok {
		for _, tok := range strings.Fields(v) {
			if c := normColor(tok); c != "" {
				return c
			}
		}
	}
	return ""
}

var (
	hexColor = regexp.MustCompile(`^#([0-9a-f]{3}|[0-9a-f]{6})$`)
	rgbColor = regexp.MustCompile(`^rgba?\((\d+),(\d+),(\d+)(?:,([\d.]+))?\)$`)
)

var namedColors = map[string]string{
	"white":       "#ffffff",
	"black":       "#000000",
	"red":         "#ff0000",
	"gray":        "#808080",
	"grey":        "#808080",
	"transparent": "transparent",
}

// normColor canonicalizes a CSS color to #rrggbb or "transparent"; it
// returns "" for anything it does not recognize.
func normColor(s string) string {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if m := hexColor.FindStringSubmatch(s); m != nil {
		h := m[1]
		if len(h) == 3 {
			h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		}
		return "#" + h
	}
	if m := rgbColor.FindStringSubmatch(s); m != nil {
		if m[4] != "" {
			if a, err := strconv.ParseFloat(m[4], 64); err == nil && a == 0 {
				return "transparent"
			}
		}
		var rgb [3]int
		for i := range rgb {
			rgb[i], _ = strconv.Atoi(m[i+1])
		}
		return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
	}
	return ""
}
