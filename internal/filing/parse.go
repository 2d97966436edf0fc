package filing

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrEmptyInput is returned when there is no markup to parse.
	ErrEmptyInput = errors.New("filing: empty content")
	// ErrParse is returned when the markup cannot be turned into a tree.
	ErrParse = errors.New("filing: parse failed")
)

// Parse builds a markup tree from filing content and returns the element the
// segmenter should walk: <body> when present, otherwise the document root.
// The HTML parser recovers from unclosed tags and bad entities, which DART
// XML documents contain regularly.
func Parse(content string) (*html.Node, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	return ParseReader(strings.NewReader(content))
}

// ParseReader is Parse for already-decoded UTF-8 markup streams.
func ParseReader(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if doc == nil || doc.FirstChild == nil {
		return nil, ErrParse
	}
	if body := findBody(doc); body != nil {
		return body, nil
	}
	return doc, nil
}
