package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"legalassist-backend/models"
)

// ParsedAnswer is the JSON object returned by the synthesis model, decoded with json.Number
type ParsedAnswer map[string]any

// DecodeParsedAnswer decodes model JSON into a ParsedAnswer. Non-object JSON is an error.
func DecodeParsedAnswer(raw string) (ParsedAnswer, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var parsed ParsedAnswer
	if err := dec.Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, fmt.Errorf("expected a JSON object, got null")
	}
	if _, isObject := parsed["argumentation"].(map[string]any); isObject {
		fields, err := decodeOrderedField(raw, "argumentation")
		if err != nil {
			return nil, err
		}
		parsed["argumentation"] = fields
	}
	return parsed, nil
}

// orderedField is one member of a JSON object, kept in document order
type orderedField struct {
	Key   string
	Value any
}

// decodeOrderedField re-reads the object under key in raw, keeping its members in document order
func decodeOrderedField(raw, key string) ([]orderedField, error) {
	var wrapper map[string]json.RawMessage
	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&wrapper); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(wrapper[key]))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("%s: expected a JSON object", key)
	}

	var fields []orderedField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected token %v", key, tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, orderedField{Key: name, Value: value})
	}
	return fields, nil
}

var citationMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\[\[source:([^\]]+)\]\]`),
	regexp.MustCompile(`\[source:([^\]]+)\]`),
	regexp.MustCompile(`(?i)article\s+([A-Za-z0-9\-\.]+)`),
}

// CitationReport describes what VerifyCitations found and kept
type CitationReport struct {
	// Markers are every citation marker found in the argumentation, in order
	Markers []string
	// Accepted are textes_applicables entries kept after exact match or substring rescue, duplicates included
	Accepted []string
	// Deduplicated is Accepted without repeats, first occurrence wins. The answer carries this list.
	Deduplicated []string
	// Dropped entries matched no snippet
	Dropped []string
	// Rescued maps an entry to the snippet id it was rescued to
	Rescued map[string]string
	// Uncited is set when no marker was found and the warning was appended
	Uncited bool
}

// VerifyCitations checks textes_applicables against the snippet ids of the run and flattens the
// argumentation into strings. It never modifies parsed.
func VerifyCitations(parsed ParsedAnswer, snippets []models.Snippet) (ParsedAnswer, CitationReport) {
	result := make(ParsedAnswer, len(parsed))
	for k, v := range parsed {
		result[k] = v
	}
	report := CitationReport{Rescued: map[string]string{}}

	allowed := make(map[string]struct{}, len(snippets))
	sortedIDs := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if _, ok := allowed[s.ID]; !ok {
			allowed[s.ID] = struct{}{}
			sortedIDs = append(sortedIDs, s.ID)
		}
	}
	sort.Strings(sortedIDs)

	argumentation := flattenArgumentation(result["argumentation"])
	for _, arg := range argumentation {
		for _, re := range citationMarkers {
			for _, m := range re.FindAllStringSubmatch(arg, -1) {
				report.Markers = append(report.Markers, m[1])
			}
		}
	}

	if raw, ok := result["textes_applicables"]; ok {
		for _, entry := range textEntries(raw) {
			if _, exact := allowed[entry]; exact {
				report.Accepted = append(report.Accepted, entry)
				continue
			}
			if id, found := rescueCitation(entry, sortedIDs); found {
				report.Accepted = append(report.Accepted, id)
				report.Rescued[entry] = id
				continue
			}
			report.Dropped = append(report.Dropped, entry)
		}
		report.Deduplicated = dedupe(report.Accepted)
		result["textes_applicables"] = report.Deduplicated
	}

	if len(report.Markers) == 0 {
		argumentation = append(argumentation, UncitedWarning)
		report.Uncited = true
	}
	result["argumentation"] = argumentation

	return result, report
}

// rescueCitation matches an unknown entry to a known id. A bare article id resolves to its own
// first chunk. Otherwise an id containing the entry, or contained in it, is chosen: the longest
// shared prefix wins, ties go to the smallest id.
func rescueCitation(entry string, sortedIDs []string) (string, bool) {
	if entry == "" {
		return "", false
	}
	for _, id := range sortedIDs {
		if strings.HasPrefix(id, entry+chunkIDSeparator) {
			return id, true
		}
	}
	best, bestPrefix := "", -1
	for _, id := range sortedIDs {
		if !strings.Contains(id, entry) && !strings.Contains(entry, id) {
			continue
		}
		if p := commonPrefixLen(entry, id); p > bestPrefix {
			best, bestPrefix = id, p
		}
	}
	return best, bestPrefix >= 0
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// flattenArgumentation coerces the argumentation field into a list of strings.
// Decoded objects keep their document order; plain maps are flattened in key order.
func flattenArgumentation(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	case []orderedField:
		out := []string{}
		for _, f := range val {
			out = appendFlattened(out, f.Value)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := []string{}
		for _, k := range keys {
			out = appendFlattened(out, val[k])
		}
		return out
	default:
		return []string{stringify(val)}
	}
}

// appendFlattened appends a list value element-wise, any other value as one string
func appendFlattened(out []string, v any) []string {
	if items, ok := v.([]any); ok {
		for _, item := range items {
			out = append(out, stringify(item))
		}
		return out
	}
	return append(out, stringify(v))
}

// textEntries reads textes_applicables, accepting a scalar, a list, or objects carrying an "id"
func textEntries(v any) []string {
	var items []any
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string{}, val...)
	case []any:
		items = val
	default:
		items = []any{val}
	}

	entries := make([]string, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			if id, has := obj["id"]; has {
				item = id
			}
		}
		entries = append(entries, stringify(item))
	}
	return entries
}

// stringify renders a decoded JSON value as text
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimRight(buf.String(), "\n")
	}
}

// ensureStringList coerces a field into a list of strings: lists are stringified element-wise,
// empty scalars become an empty list and other scalars a one-element list.
func ensureStringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, val...)
	case []orderedField:
		return flattenArgumentation(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	case string:
		if val == "" {
			return []string{}
		}
		return []string{val}
	case bool:
		if !val {
			return []string{}
		}
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return []string{}
		}
	case map[string]any:
		if len(val) == 0 {
			return []string{}
		}
	}
	return []string{stringify(v)}
}

func stringField(parsed ParsedAnswer, key, fallback string) string {
	v, ok := parsed[key]
	if !ok || v == nil {
		return fallback
	}
	return stringify(v)
}

// NormalizeAnswer coerces a verified answer into the fixed schema and attaches metadata.
// It never panics: any failure yields NormalizationFailureAnswer.
func NormalizeAnswer(
	parsed ParsedAnswer,
	question string,
	h models.Hypothesis,
	snippets []models.Snippet,
	articles []models.Article,
	now time.Time,
) (answer models.StructuredAnswer) {
	defer func() {
		if r := recover(); r != nil {
			answer = NormalizationFailureAnswer(question, h, fmt.Sprint(r), now)
		}
	}()

	textes := ensureStringList(parsed["textes_applicables"])

	meta := newMetadata(question, now)
	meta.DomaineDetecte = DetectDomainFromSnippets(snippets)
	meta.KeywordsUtilises = keywordsOrEmpty(h.Keywords)
	meta.Contexte = h.Context
	meta.NombreSources = len(snippets)
	meta.SourcesUtilisees = textes
	if articles != nil {
		meta.ArticlesBruts = articles
	}

	return models.StructuredAnswer{
		ValidationHypothesis: stringField(parsed, "validation_hypothesis", models.QualificationUnspecified),
		HypothesisOriginale:  h.Hypothesis,
		Qualification:        stringField(parsed, "qualification", models.QualificationUnspecified),
		TextesApplicables:    textes,
		Argumentation:        ensureStringList(parsed["argumentation"]),
		Hypotheses:           ensureStringList(parsed["hypotheses"]),
		Risques:              ensureStringList(parsed["risques"]),
		Synthese:             stringField(parsed, "synthese", ""),
		Recommandations:      ensureStringList(parsed["recommandations"]),
		Metadata:             meta,
	}
}

// VerifyAndNormalize runs citation verification then normalization
func VerifyAndNormalize(
	parsed ParsedAnswer,
	snippets []models.Snippet,
	articles []models.Article,
	h models.Hypothesis,
	question string,
	now time.Time,
) (models.StructuredAnswer, CitationReport) {
	verified, report := VerifyCitations(parsed, snippets)
	return NormalizeAnswer(verified, question, h, snippets, articles, now), report
}
