package service

import (
	"strings"
	"time"

	"legalassist-backend/models"
)

const (
	timestampLayout = "2006-01-02 15:04:05"

	legifranceRecommendation = "Consultez la version officielle sur Légifrance (legifrance.gouv.fr)"
	genericRecommendation    = "Contactez un professionnel du droit"

	// UncitedWarning is appended to the argumentation when the model cited nothing
	UncitedWarning = "⚠️ REMARQUE: Les sources ont été analysées mais aucune citation directe n'a pu être extraite."
)

// Domains used to pick recommendations
const (
	DomainFiscalLaw     = "droit fiscal"
	DomainLabourLaw     = "droit du travail"
	DomainCivilLaw      = "droit civil"
	DomainCriminalLaw   = "droit pénal"
	DomainRoadCode      = "code de la route"
	DomainIntellectual  = "propriété intellectuelle"
	DomainGeneralDetect = models.DomainGeneral
)

var domainRecommendations = map[string][]string{
	DomainFiscalLaw: {
		"Site: impots.gouv.fr (taux, simulateurs)",
		"Votre espace personnel impots.gouv.fr",
		"Centre des finances publiques",
	},
	DomainLabourLaw: {
		"Convention collective applicable (Legifrance)",
		"Inspection du travail",
		"Code du travail annoté (ministère)",
	},
	DomainCivilLaw: {
		"Notaire pour succession/donation",
		"Jurisprudence JurisData",
		"Associations de consommateurs",
	},
	DomainCriminalLaw: {
		"Avocat pénaliste (obligation légale)",
		"Ministère de la Justice",
		"Décisions de cassation (Legifrance)",
	},
	DomainRoadCode: {
		"Code de la route (Legifrance)",
		"Site officiel ANTS",
		"Préfecture pour permis",
	},
	DomainIntellectual: {
		"INPI (brevets/marques)",
		"Bases jurisprudence Darts-IP",
		"Avocat spécialisé PI",
	},
}

// hypothesis domains are short tags, the recommendation table is keyed by full domain names
var hypothesisDomainKeys = map[string]string{
	models.DomainFiscal:    DomainFiscalLaw,
	models.DomainTravail:   DomainLabourLaw,
	models.DomainCivil:     DomainCivilLaw,
	models.DomainPenal:     DomainCriminalLaw,
	models.DomainRoute:     DomainRoadCode,
	models.DomainPropriete: DomainIntellectual,
}

// DomainRecommendations returns the Légifrance entry followed by resources for the domain.
// Both hypothesis tags ("travail") and full names ("droit du travail") are accepted.
func DomainRecommendations(domain string) []string {
	key := strings.ToLower(strings.TrimSpace(domain))
	if mapped, ok := hypothesisDomainKeys[key]; ok {
		key = mapped
	}

	recs := []string{legifranceRecommendation}
	if extra, ok := domainRecommendations[key]; ok {
		return append(recs, extra...)
	}
	return append(recs, genericRecommendation)
}

// DetectDomainFromSnippets sniffs the legal domain from the first snippet title
func DetectDomainFromSnippets(snippets []models.Snippet) string {
	if len(snippets) == 0 {
		return DomainGeneralDetect
	}
	title := strings.ToLower(snippets[0].Title)
	switch {
	case strings.Contains(title, "fiscal") || strings.Contains(title, "impôt"):
		return DomainFiscalLaw
	case strings.Contains(title, "pénal"):
		return DomainCriminalLaw
	case strings.Contains(title, "travail"):
		return DomainLabourLaw
	}
	return DomainGeneralDetect
}

func newMetadata(question string, now time.Time) models.AnswerMetadata {
	return models.AnswerMetadata{
		Question:         question,
		KeywordsUtilises: []string{},
		SourcesUtilisees: []string{},
		ArticlesBruts:    []models.Article{},
		Timestamp:        now.Format(timestampLayout),
		Pipeline:         models.PipelineTag,
	}
}

func keywordsOrEmpty(keywords []string) []string {
	if keywords == nil {
		return []string{}
	}
	return keywords
}

// NoSourcesAnswer is returned when retrieval found nothing to ground an answer on
func NoSourcesAnswer(question string, h models.Hypothesis, now time.Time) models.StructuredAnswer {
	domain := h.LegalDomain
	if domain == "" {
		domain = models.DomainGeneral
	}

	meta := newMetadata(question, now)
	meta.Error = "no_sources"
	meta.DomaineDetecte = domain
	meta.KeywordsUtilises = keywordsOrEmpty(h.Keywords)
	meta.Contexte = h.Context

	return models.StructuredAnswer{
		ValidationHypothesis: "IMPOSSIBLE - Aucune source",
		HypothesisOriginale:  h.Hypothesis,
		Qualification:        models.QualificationInsufficient,
		TextesApplicables:    []string{},
		Argumentation:        []string{"Aucun article pertinent trouvé dans l'API LégiFrance"},
		Hypotheses:           []string{h.Hypothesis},
		Risques:              []string{"Impossible de valider sans sources officielles"},
		Synthese:             "Aucune source juridique n'a pu être identifiée.",
		Recommandations:      DomainRecommendations(domain),
		Metadata:             meta,
	}
}

// ErrorAnswer is returned when synthesis failed (model call or unparseable output)
func ErrorAnswer(errMsg, question string, h models.Hypothesis, now time.Time) models.StructuredAnswer {
	meta := newMetadata(question, now)
	meta.Error = errMsg
	meta.DomaineDetecte = h.LegalDomain
	meta.KeywordsUtilises = keywordsOrEmpty(h.Keywords)
	meta.Contexte = h.Context

	return models.StructuredAnswer{
		ValidationHypothesis: "ERREUR - " + errMsg,
		HypothesisOriginale:  h.Hypothesis,
		Qualification:        models.QualificationProcessingErr,
		TextesApplicables:    []string{},
		Argumentation:        []string{"Erreur: " + errMsg},
		Hypotheses:           []string{h.Hypothesis},
		Risques:              []string{},
		Synthese:             "Erreur lors du traitement: " + errMsg,
		Recommandations:      DomainRecommendations(h.LegalDomain),
		Metadata:             meta,
	}
}

// CriticalAnswer is returned when the pipeline itself failed
func CriticalAnswer(question, errMsg string, now time.Time) models.StructuredAnswer {
	meta := newMetadata(question, now)
	meta.CriticalError = errMsg

	return models.StructuredAnswer{
		ValidationHypothesis: "ERREUR CRITIQUE",
		Qualification:        models.QualificationPipelineErr,
		TextesApplicables:    []string{},
		Argumentation:        []string{"Erreur critique: " + errMsg},
		Hypotheses:           []string{},
		Risques:              []string{},
		Synthese:             "Pipeline en échec: " + errMsg,
		Recommandations:      []string{"Vérifiez les logs", "Contactez le support"},
		Metadata:             meta,
	}
}

// NormalizationFailureAnswer is the minimal answer used when normalization itself breaks
func NormalizationFailureAnswer(question string, h models.Hypothesis, errMsg string, now time.Time) models.StructuredAnswer {
	meta := newMetadata(question, now)
	meta.NormalizationError = errMsg

	return models.StructuredAnswer{
		ValidationHypothesis: "ERREUR_NORMALISATION",
		HypothesisOriginale:  h.Hypothesis,
		Qualification:        models.QualificationFormatErr,
		TextesApplicables:    []string{},
		Argumentation:        []string{"Erreur technique: " + errMsg},
		Hypotheses:           []string{},
		Risques:              []string{},
		Synthese:             "Erreur lors du formatage de la réponse.",
		Recommandations:      []string{genericRecommendation},
		Metadata:             meta,
	}
}
