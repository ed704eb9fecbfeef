package service

import (
	"regexp"
	"strings"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	fencedBlock  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
)

const emptyObject = "{}"

// ExtractJSON pulls a JSON object out of model output that may be wrapped in markdown or prose.
// It prefers the first fenced block, then the span from the first '{' to the last '}', and
// returns "{}" when neither exists.
func ExtractJSON(text string) string {
	text = controlChars.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, `\\`, `\`)

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end >= start {
		return text[start : end+1]
	}
	return emptyObject
}
