// Package ixbrl reads the inline XBRL tags that regulatory filings embed in
// their statement tables, and renders HTML nodes to text the way a browser
// would display them.
package ixbrl

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLText uses an HTML stringification algorithm geared towards reproducing
// the way an HTML node's text would display in a browser:
// - block nodes are wrapped with line returns
// - inline nodes have contiguous spaces collapsed down to one space
// - non-text nodes (e.g. HTML comments or text nodes between block nodes) are omitted
func HTMLText(nodes ...*html.Node) string {
	if nodes == nil {
		return ""
	}

	var textBuilder strings.Builder
	for _, node := range nodes {
		extractText(node, &textBuilder)
	}
	return strings.TrimSpace(textBuilder.String())
}

// Line is HTMLText collapsed onto a single line, for table cells whose
// content is split across paragraphs.
func Line(n *html.Node) string {
	return strings.Join(strings.Fields(HTMLText(n)), " ")
}

func isInlineNode(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return true
	}
	switch node.Data {
	case "span", "em", "strong", "a", "br", "b", "i", "u", "sup", "sub", "small", "font",
		"ix:nonfraction", "ix:nonnumeric", "ix:continuation":
		return true
	default:
		return false
	}
}

// IsBlock reports an element that starts a new line when rendered.
func IsBlock(node *html.Node) bool {
	return node.Type == html.ElementNode && !isInlineNode(node)
}

func extractText(node *html.Node, builder *strings.Builder) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if node.Data == "script" || node.Data == "style" || node.Data == "ix:header" {
			return
		}
	}

	if node.Type == html.TextNode {
		builder.WriteString(node.Data)
	}
	var cb strings.Builder
	allInlineChildren := onlyInlineChildren(node)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !allInlineChildren && child.Type == html.TextNode {
			continue
		}
		extractText(child, &cb)
	}
	if allInlineChildren {
		builder.WriteString(strings.Join(strings.Fields(cb.String()), " "))
	} else {
		builder.WriteString(cb.String())
	}
	if IsBlock(node) {
		builder.WriteString("\n")
	}
}

func onlyInlineChildren(node *html.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !isInlineNode(child) {
			return false
		}
	}
	return true
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Contains reports whether an element named tag sits at or below n.
func Contains(n *html.Node, tag string) bool {
	if n.Type == html.ElementNode && n.Data == tag {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if Contains(c, tag) {
			return true
		}
	}
	return false
}
