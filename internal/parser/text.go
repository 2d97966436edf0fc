package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/dartrag/internal/filing"
	"golang.org/x/net/html"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*html.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []block
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				blocks = append(blocks, block{text: current.String()})
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		blocks = append(blocks, block{text: current.String()})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return filing.Parse(render(blocks))
}
