package adapter

import (
	"strconv"
	"strings"
)

// parseDeclarations reads a CSS declaration list such as an inline style
// attribute. Property names are lower-cased; later declarations win.
func parseDeclarations(s string) map[string]string {
	decls := map[string]string{}
	for _, part := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if name != "" {
			decls[name] = value
		}
	}
	return decls
}

// lengthPt converts a CSS length to points.
func lengthPt(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	units := []struct {
		suffix string
		factor float64
	}{
		{"pt", 1},
		{"px", 0.75},
		{"rem", 12},
		{"em", 12},
		{"in", 72},
		{"%", 0.12},
	}
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), 64)
			if err != nil {
				return 0, false
			}
			return v * u.factor, true
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * 0.75, true
}
