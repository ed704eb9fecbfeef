package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxSimpleKeywords = 5

var (
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

	frenchStopWords = map[string]struct{}{
		"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "de": {}, "du": {},
		"des": {}, "et": {}, "ou": {}, "dans": {}, "pour": {}, "par": {}, "sur": {},
	}
)

// ExtractSimpleKeywords returns up to five lowercase words longer than three letters, stop-words removed.
// It is the fallback whenever the model gives no usable keywords.
func ExtractSimpleKeywords(text string) []string {
	keywords := make([]string, 0, maxSimpleKeywords)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if _, stop := frenchStopWords[w]; stop {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxSimpleKeywords {
			break
		}
	}
	return keywords
}
