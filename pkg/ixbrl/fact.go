package ixbrl

import (
	"strconv"

	"golang.org/x/net/html"
)

// NonFraction is an ix:nonFraction element: a tagged numeric fact whose
// displayed text is scaled by a power of ten and whose sign may be carried
// by an attribute rather than by the text. Only the attributes a table
// cell needs are kept.
type NonFraction struct {
	Name  string
	Scale string
	Sign  string
}

// FromNode reads the attributes of an ix:nonfraction element. The html
// parser lower-cases both the element and attribute names.
func FromNode(n *html.Node) (*NonFraction, bool) {
	if n == nil || n.Type != html.ElementNode || n.Data != "ix:nonfraction" {
		return nil, false
	}
	nf := &NonFraction{}
	for _, a := range n.Attr {
		switch a.Key {
		case "name":
			nf.Name = a.Val
		case "scale":
			nf.Scale = a.Val
		case "sign":
			nf.Sign = a.Val
		}
	}
	return nf, true
}

// FactIn returns the first tagged numeric fact at or below n.
func FactIn(n *html.Node) *NonFraction {
	if n == nil {
		return nil
	}
	if nf, ok := FromNode(n); ok {
		return nf
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if nf := FactIn(c); nf != nil {
			return nf
		}
	}
	return nil
}

// Exponent is the scale attribute as a power of ten, 0 when absent.
func (nf *NonFraction) Exponent() int {
	scale, err := strconv.Atoi(nf.Scale)
	if err != nil {
		return 0
	}
	return scale
}

// Negative reports the sign="-" attribute.
func (nf *NonFraction) Negative() bool {
	return nf.Sign == "-"
}
