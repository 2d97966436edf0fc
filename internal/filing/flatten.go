package filing

import (
	"strings"

	"golang.org/x/net/html"
)

// Flatten returns the text of every descendant text node of n, each trimmed,
// empty pieces dropped, joined with single spaces. A nil node yields "".
func Flatten(n *html.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if t := strings.TrimSpace(c.Data); t != "" {
					parts = append(parts, t)
				}
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
