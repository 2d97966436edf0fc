package report

import "strings"

// Indicators are keywords whose co-occurrence marks a peer-comparison page in
// an analyst report. "Margin & Growth" and "Price & Fundamentals" headers are
// split into their parts.
var Indicators = []string{
	"투자의견",
	"Margin",
	"Growth",
	"주가수익률",
	"수익률 비교",
	"Price",
	"Fundamentals",
}

// DefaultThreshold is the number of distinct indicators a competitor page needs.
const DefaultThreshold = 2

// PageClassification is the verdict for one report page.
type PageClassification struct {
	Page       int  `json:"page"`
	Indicators int  `json:"indicators"`
	Competitor bool `json:"competitor"`
}

// CountIndicators returns how many distinct indicators occur in text, matched
// case-insensitively as plain substrings.
func CountIndicators(text string) int {
	lower := strings.ToLower(text)
	found := make(map[string]struct{}, len(Indicators))
	for _, kw := range Indicators {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found[kw] = struct{}{}
		}
	}
	return len(found)
}

// Classify counts indicators on a page and compares them with threshold.
// A non-positive threshold means DefaultThreshold.
func Classify(page int, text string, threshold int) PageClassification {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	n := CountIndicators(text)
	return PageClassification{
		Page:       page,
		Indicators: n,
		Competitor: n >= threshold,
	}
}
