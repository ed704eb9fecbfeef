package models

// Legal domains the hypothesis model is allowed to choose from
const (
	DomainFiscal        = "fiscal"
	DomainCivil         = "civil"
	DomainPenal         = "pénal"
	DomainTravail       = "travail"
	DomainCommercial    = "commercial"
	DomainRoute         = "route"
	DomainPropriete     = "propriété intellectuelle"
	DomainEnvironnement = "environnement"
	DomainGeneral       = "général"
)

// Search scopes the hypothesis model may recommend
const (
	ScopeCodeSeul            = "code_seul"
	ScopeCodeEtAffilies      = "code_et_affiliés"
	ScopeJurisprudenceEtCode = "jurisprudence_et_code"
)

// Hypothesis is the preliminary legal framing of a question, produced before any evidence is retrieved.
// Keywords are ordered; the first five build the search query.
type Hypothesis struct {
	Hypothesis  string   `json:"hypothesis"`
	Keywords    []string `json:"keywords"`
	LegalDomain string   `json:"legal_domain"`
	Context     string   `json:"context"`
	SearchScope string   `json:"search_scope,omitempty"`
}
