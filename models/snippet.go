package models

// Snippet is a bounded, independently citable fragment of an article.
// ID is "<article_id>__<chunk_index>" and is unique within one pipeline run.
type Snippet struct {
	ID    string `json:"id"`
	ArtID string `json:"art_id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
