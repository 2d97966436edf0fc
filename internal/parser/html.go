package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/dartrag/internal/filing"
	"golang.org/x/net/html"
)

// MarkupParser handles DART XML and HTML filings. Bytes are decoded to UTF-8
// first since older filings are EUC-KR.
type MarkupParser struct {
	// Charset overrides detection when set, e.g. "euc-kr".
	Charset string
}

func (p *MarkupParser) Parse(r io.Reader, filename string) (*html.Node, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return filing.Parse(filing.DecodeContent(b, p.Charset))
}

// block is one paragraph of a non-markup source. level > 0 marks a heading.
type block struct {
	level int
	text  string
}

// render turns blocks into markup the extractor understands: headings become
// <h1>..<h6>, everything else <p>.
func render(blocks []block) string {
	var b strings.Builder
	for _, bl := range blocks {
		text := strings.TrimSpace(bl.text)
		if text == "" {
			continue
		}
		tag := "p"
		if bl.level > 0 {
			tag = fmt.Sprintf("h%d", min(bl.level, 6))
		}
		fmt.Fprintf(&b, "<%s>%s</%s>\n", tag, html.EscapeString(text), tag)
	}
	if b.Len() == 0 {
		return ""
	}
	return "<html><body>\n" + b.String() + "</body></html>"
}
