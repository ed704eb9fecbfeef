package legifrance

import (
	"strings"

	"legalassist-backend/models"
)

// SourceAPI tags articles that came from a live search
const SourceAPI = "api_legifrance"

const unknownCode = "Code inconnu"

// SearchResponse is the body returned by POST /search
type SearchResponse struct {
	TotalResultNumber int            `json:"totalResultNumber"`
	Results           []SearchResult `json:"results"`
}

// SearchResult is one hit of a CODE_ETAT search with details and content enabled
type SearchResult struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title,omitempty"`
	CodeName    string     `json:"codeName,omitempty"`
	LegalStatus string     `json:"legalStatus,omitempty"`
	Etat        string     `json:"etat,omitempty"`
	Content     string     `json:"content,omitempty"`
	Text        string     `json:"text,omitempty"`
	Titles      []TitleRef `json:"titles,omitempty"`
	Sections    []Section  `json:"sections,omitempty"`
}

// TitleRef names the text (code) a result belongs to
type TitleRef struct {
	ID    string `json:"id,omitempty"`
	CID   string `json:"cid,omitempty"`
	Title string `json:"title,omitempty"`
}

// Section groups the matching article extracts of a result
type Section struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	LegalStatus string    `json:"legalStatus,omitempty"`
	Extracts    []Extract `json:"extracts,omitempty"`
}

// Extract is a matching article inside a section
type Extract struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Num         string   `json:"num,omitempty"`
	LegalStatus string   `json:"legalStatus,omitempty"`
	Values      []string `json:"values,omitempty"`
}

// Normalize maps a search hit onto an Article.
// The first extract with content wins; without one, block-level fields are used.
func Normalize(r SearchResult) models.Article {
	code := r.codeName()

	for _, section := range r.Sections {
		for _, extract := range section.Extracts {
			content := CleanText(strings.Join(extract.Values, "\n\n"))
			if content == "" {
				continue
			}
			return models.Article{
				ID:          firstNonEmpty(extract.ID, r.ID),
				Title:       firstNonEmpty(extract.Title, section.Title, r.Title),
				Content:     content,
				CodeName:    code,
				LegalStatus: firstNonEmpty(extract.LegalStatus, section.LegalStatus, r.LegalStatus, r.Etat),
				Section:     section.Title,
				Numero:      extract.Num,
				Source:      SourceAPI,
			}
		}
	}

	return models.Article{
		ID:          r.ID,
		Title:       r.Title,
		Content:     CleanText(firstNonEmpty(r.Content, r.Text)),
		CodeName:    code,
		LegalStatus: firstNonEmpty(r.LegalStatus, r.Etat),
		Source:      SourceAPI,
	}
}

// NormalizeAll maps at most limit results, in order. A non-positive limit keeps all of them.
func NormalizeAll(resp *SearchResponse, limit int) []models.Article {
	if resp == nil {
		return nil
	}
	results := resp.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	articles := make([]models.Article, 0, len(results))
	for _, r := range results {
		articles = append(articles, Normalize(r))
	}
	return articles
}

func (r SearchResult) codeName() string {
	for _, t := range r.Titles {
		if t.Title != "" {
			return t.Title
		}
	}
	return firstNonEmpty(r.CodeName, unknownCode)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
