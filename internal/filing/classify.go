package filing

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// headingTags are the element names that may carry a section title.
var headingTags = map[string]bool{
	"title":  true,
	"h1":     true,
	"h2":     true,
	"h3":     true,
	"h4":     true,
	"p":      true,
	"b":      true,
	"strong": true,
}

const (
	maxTitleRunes = 150
	pageNoise     = "페이지"
)

// Classifier decides whether an element is a section heading. Compiled
// expressions are cached, so a Classifier must not be shared between
// goroutines.
type Classifier struct {
	log      *slog.Logger
	compiled map[string]*regexp.Regexp
}

func NewClassifier(log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Classifier{
		log:      log,
		compiled: make(map[string]*regexp.Regexp),
	}
}

// Match returns the flattened text of n when n looks like a heading and one of
// expressions matches it. Expressions are tried in order; the first match wins.
func (c *Classifier) Match(n *html.Node, expressions []string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	if !headingTags[strings.ToLower(n.Data)] {
		return "", false
	}

	text := strings.TrimSpace(Flatten(n))
	if !plausibleTitle(text) {
		return "", false
	}

	for _, expr := range expressions {
		re := c.compile(expr)
		if re == nil {
			continue
		}
		if re.MatchString(text) {
			return text, true
		}
	}
	return "", false
}

// compile returns the case-insensitive regexp for expr, or nil if it does not
// compile. Failures are logged once per expression.
func (c *Classifier) compile(expr string) *regexp.Regexp {
	if re, ok := c.compiled[expr]; ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		c.log.Error("invalid section pattern", "pattern", expr, "error", err)
		re = nil
	}
	c.compiled[expr] = re
	return re
}

// plausibleTitle rejects text that is empty, too long, mostly punctuation,
// purely numeric, or a page-number artifact.
func plausibleTitle(text string) bool {
	if text == "" || utf8.RuneCountInString(text) > maxTitleRunes {
		return false
	}
	if wordChars(text) < 2 {
		return false
	}
	if isAllDigits(text) {
		return false
	}
	return !strings.Contains(text, pageNoise)
}

func wordChars(s string) int {
	n := 0
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r) {
			n++
		}
	}
	return n
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
