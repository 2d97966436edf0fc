package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/dartrag/internal/filing"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// MarkdownParser handles Markdown exports of filings using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*html.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return filing.Parse(buf.String())
}
