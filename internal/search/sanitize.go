package search

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// untitled replaces empty result titles.
const untitled = "Untitled"

// CleanTitle returns a display title, "Untitled" when the provider sent none.
func CleanTitle(s string) string {
	if t := CleanText(s); t != "" {
		return t
	}
	return untitled
}

// CleanText strips HTML markup, decodes entities, normalizes Unicode to NFC
// and collapses whitespace. Provider snippets often carry <strong> highlight
// tags and raw page fragments.
func CleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		s = htmlText(s)
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// htmlText returns the text content of an HTML fragment, skipping script
// and style elements. Unparseable input is returned unchanged.
func htmlText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "br", "p", "div", "li":
				text.WriteString(" ")
			}
		case html.TextNode:
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return text.String()
}
