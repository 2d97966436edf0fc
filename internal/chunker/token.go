package chunker

import (
	"strings"
	"unicode"
)

// EstimateTokens gives a rough token count. Latin words count about 1.33
// tokens each; Hangul costs roughly 0.7 tokens per syllable.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	var total float64
	for _, w := range strings.Fields(text) {
		total += wordTokens(w)
	}
	tokens := int(total)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

func wordTokens(w string) float64 {
	hangul := 0
	for _, r := range w {
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if hangul == 0 {
		return 1.33
	}
	return float64(hangul) * 0.7
}
