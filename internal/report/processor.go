package report

import (
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/dgallion1/dartrag/internal/document"
)

const (
	// DocumentType labels documents produced from analyst report pages.
	DocumentType = "FnGuide_PDF (Competition Page)"
	// RelationCompetition tags pages as evidence of a competitive relationship.
	RelationCompetition = "competition"

	minPageRunes      = 50
	unknownReportDate = "unknown"
)

// Processor turns analyst report PDFs into competitor-comparison documents.
type Processor struct {
	log       *slog.Logger
	threshold int
}

func NewProcessor(log *slog.Logger, threshold int) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Processor{log: log, threshold: threshold}
}

// Threshold returns the number of indicators a competitor page needs.
func (p *Processor) Threshold() int {
	return p.threshold
}

// Process extracts the pages of the PDF at path and returns one document per
// competitor page. A missing or unreadable file yields no documents.
func (p *Processor) Process(path, companyCode string) []document.Document {
	pages, err := p.ExtractPages(path)
	if err != nil {
		p.log.Error("failed to read report pdf", "source", path, "company_code", companyCode, "error", err)
		return nil
	}
	if len(pages) == 0 {
		p.log.Warn("report pdf has no text", "source", path, "company_code", companyCode)
		return nil
	}
	p.log.Info("processing report pdf", "source", path, "company_code", companyCode, "pages", len(pages))
	return p.ProcessPages(pages, path, companyCode)
}

// ProcessPages classifies already-extracted page text. Pages are visited in
// ascending order; empty and short pages are skipped without counting.
func (p *Processor) ProcessPages(pages map[int]string, source, companyCode string) []document.Document {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var docs []document.Document
	processed := make(map[int]bool)
	for _, n := range nums {
		text := pages[n]
		if processed[n] || text == "" || utf8.RuneCountInString(text) < minPageRunes {
			continue
		}

		c := Classify(n, text, p.threshold)
		if !c.Competitor {
			continue
		}
		p.log.Info("competitor page found", "company_code", companyCode, "page", n, "indicators", c.Indicators)
		docs = append(docs, document.Document{
			PageContent: text,
			Metadata: document.Metadata{
				CompanyCode:           companyCode,
				DocumentType:          DocumentType,
				PotentialRelationType: RelationCompetition,
				Section:               fmt.Sprintf("Competitor Metrics Page %d", n),
				Source:                source,
				ReportDate:            unknownReportDate,
				Page:                  n,
			},
		})
		processed[n] = true
	}

	if len(docs) == 0 {
		p.log.Warn("no competitor pages found", "company_code", companyCode, "source", source)
	} else {
		p.log.Info("finished report pdf", "company_code", companyCode, "documents", len(docs))
	}
	return docs
}
