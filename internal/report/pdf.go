package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNotFound is returned when the report file does not exist.
var ErrNotFound = errors.New("report: pdf not found")

// ExtractPages returns the text of every non-empty page keyed by 1-based page
// number. Runs of whitespace are collapsed to single spaces.
func (p *Processor) ExtractPages(path string) (map[int]string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	// pdfcpu is stricter than the text extractor; a failed probe is only a warning.
	if n, err := probePageCount(path); err != nil {
		p.log.Warn("pdf probe failed", "source", path, "error", err)
	} else {
		p.log.Debug("pdf probed", "source", path, "pages", n)
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make(map[int]string)
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			p.log.Warn("could not extract page text", "source", path, "page", i, "error", err)
			continue
		}
		text = collapseSpace(text)
		if text != "" {
			pages[i] = text
		}
	}
	return pages, nil
}

func probePageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
