package filing

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/dartrag/internal/document"
	"golang.org/x/net/html"
)

// DocumentStart labels content that precedes the first recognized heading.
const DocumentStart = "document start"

// minSectionRunes is the length a section body must exceed to be emitted.
const minSectionRunes = 20

// Meta identifies the filing being segmented. It is only used for logging.
type Meta struct {
	DocID    string
	CorpCode string
	CorpName string
}

func (m Meta) attrs() []any {
	return []any{"doc_id", m.DocID, "corp_code", m.CorpCode, "corp_name", m.CorpName}
}

// Extractor partitions filing markup into labeled sections.
type Extractor struct {
	log     *slog.Logger
	catalog Catalog
}

// NewExtractor returns an Extractor for catalog. A nil logger discards output;
// an empty catalog falls back to DefaultCatalog.
func NewExtractor(log *slog.Logger, catalog Catalog) *Extractor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Extractor{log: log, catalog: catalog}
}

// Catalog returns the section catalog in evaluation order.
func (e *Extractor) Catalog() Catalog {
	return e.catalog
}

// Extract parses content and segments it. Empty or unparsable content yields
// no sections; the reason is logged rather than returned.
func (e *Extractor) Extract(content string, meta Meta) []document.Section {
	log := e.log.With(meta.attrs()...)
	root, err := Parse(content)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			log.Warn("filing content empty")
		} else {
			log.Error("failed to parse filing markup", "error", err)
		}
		return nil
	}
	return e.Segment(root, meta)
}

// Segment walks root in document order and returns the sections it finds.
// Any failure during the walk discards the whole document.
func (e *Extractor) Segment(root *html.Node, meta Meta) (sections []document.Section) {
	log := e.log.With(meta.attrs()...)
	if root == nil {
		log.Error("no markup root to segment")
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("section extraction aborted", "panic", r, "stack", string(debug.Stack()))
			sections = nil
		}
	}()

	log.Info("segmenting filing")
	s := &segmenter{
		log:        log,
		classifier: NewClassifier(log),
		catalog:    e.catalog,
		title:      DocumentStart,
	}
	s.walk(root, false)
	s.close()

	log.Info("segmented filing", "sections", len(s.sections))
	return s.sections
}

type segmenter struct {
	log        *slog.Logger
	classifier *Classifier
	catalog    Catalog

	title    string
	lines    []string // finished lines of the open section
	line     []string // text pieces of the line being built
	sections []document.Section
}

// inlineTags do not break a line: their text joins the surrounding run.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "big": true, "cite": true, "code": true,
	"em": true, "font": true, "i": true, "label": true, "mark": true, "q": true,
	"s": true, "small": true, "span": true, "strike": true, "strong": true,
	"sub": true, "sup": true, "tt": true, "u": true,
}

// walk visits n and its descendants in document order. Every text node is
// credited to the section open when the walk reaches it. inTitle is set below
// a heading element: those descendants are still classified but their text
// never becomes section content.
func (s *segmenter) walk(n *html.Node, inTitle bool) {
	switch n.Type {
	case html.TextNode:
		if inTitle {
			return
		}
		if t := strings.TrimSpace(n.Data); t != "" {
			s.line = append(s.line, t)
		}
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if tag == "style" || tag == "script" {
			return
		}
		if title, ok := s.match(n); ok {
			s.close()
			s.title = title
			inTitle = true
		}
		block := !inlineTags[tag]
		if block {
			s.breakLine()
		}
		s.walkChildren(n, inTitle)
		if block {
			s.breakLine()
		}
		return
	}
	s.walkChildren(n, inTitle)
}

func (s *segmenter) walkChildren(n *html.Node, inTitle bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c, inTitle)
	}
}

func (s *segmenter) breakLine() {
	if len(s.line) == 0 {
		return
	}
	s.lines = append(s.lines, strings.Join(s.line, " "))
	s.line = nil
}

func (s *segmenter) match(n *html.Node) (string, bool) {
	for _, p := range s.catalog {
		if text, ok := s.classifier.Match(n, p.Expressions); ok {
			s.log.Debug("section heading", "section_id", p.ID, "title", truncate(text, 60))
			return text, true
		}
	}
	return "", false
}

// close emits the current section if its body is long enough and starts an
// empty one.
func (s *segmenter) close() {
	s.breakLine()
	body := strings.TrimSpace(strings.Join(s.lines, "\n"))
	s.lines = nil
	if utf8.RuneCountInString(body) <= minSectionRunes {
		return
	}
	s.sections = append(s.sections, document.Section{
		Content:         body,
		OriginalSection: s.title,
	})
	s.log.Debug("saved section", "title", truncate(s.title, 60), "runes", utf8.RuneCountInString(body))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
