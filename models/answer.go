package models

// Qualification values used by the fixed answer shapes
const (
	QualificationUnspecified   = "Non spécifiée"
	QualificationInsufficient  = "INFORMATION_INSUFFISANTE"
	QualificationProcessingErr = "ERREUR_TRAITEMENT"
	QualificationPipelineErr   = "ERREUR_PIPELINE"
	QualificationFormatErr     = "ERREUR_FORMAT"
)

// PipelineTag identifies the pipeline that produced an answer
const PipelineTag = "hypothesis_first_v2"

// StructuredAnswer is the fixed-schema object every pipeline outcome is normalized into.
// Slices are never nil once an answer has been built.
type StructuredAnswer struct {
	ValidationHypothesis string         `json:"validation_hypothesis"`
	HypothesisOriginale  string         `json:"hypothesis_originale"`
	Qualification        string         `json:"qualification"`
	TextesApplicables    []string       `json:"textes_applicables"`
	Argumentation        []string       `json:"argumentation"`
	Hypotheses           []string       `json:"hypotheses"`
	Risques              []string       `json:"risques"`
	Synthese             string         `json:"synthese"`
	Recommandations      []string       `json:"recommandations"`
	Metadata             AnswerMetadata `json:"metadata"`
}

// AnswerMetadata carries the provenance of an answer
type AnswerMetadata struct {
	Question           string    `json:"question"`
	DomaineDetecte     string    `json:"domaine_detecte"`
	KeywordsUtilises   []string  `json:"keywords_utilises"`
	Contexte           string    `json:"contexte"`
	NombreSources      int       `json:"nombre_sources"`
	SourcesUtilisees   []string  `json:"sources_utilisees"`
	ArticlesBruts      []Article `json:"articles_bruts"`
	Timestamp          string    `json:"timestamp"`
	Pipeline           string    `json:"pipeline"`
	Error              string    `json:"error,omitempty"`
	CriticalError      string    `json:"critical_error,omitempty"`
	NormalizationError string    `json:"normalization_error,omitempty"`
}
