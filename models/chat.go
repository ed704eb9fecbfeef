package models

// ChatRequest represents a question submitted to the assistant
type ChatRequest struct {
	Question string  `json:"question"`
	Code     *string `json:"code"`
}

// ArticleSummary is the short form of an article returned to API consumers
type ArticleSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Code    string `json:"code"`
	Excerpt string `json:"excerpt"`
	Source  string `json:"source"`
}

// QueryAnalysis exposes how the question was turned into a search
type QueryAnalysis struct {
	Keywords   []string `json:"keywords"`
	Hypothesis string   `json:"hypothesis"`
}

// ChatResponse is the full response envelope for an answered question
type ChatResponse struct {
	Question      string           `json:"question"`
	Code          *string          `json:"code"`
	Answer        string           `json:"answer"`
	Analysis      StructuredAnswer `json:"analysis"`
	Articles      []ArticleSummary `json:"articles"`
	QueryAnalysis QueryAnalysis    `json:"query_analysis"`
	Timestamp     string           `json:"timestamp"`
	Mode          string           `json:"mode"`
}
