package service

import (
	"strings"
	"testing"

	"legalassist-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatAnswerMarkdown(t *testing.T) {
	a := models.StructuredAnswer{
		ValidationHypothesis: "VALIDÉE",
		Synthese:             "Oui.",
		Argumentation:        []string{"arg 1", "arg 2"},
		Risques:              []string{"risque"},
		Recommandations:      []string{"reco"},
		TextesApplicables:    []string{"A1__0", "A2__0"},
	}

	want := strings.Join([]string{
		"### ⚖️ Conclusion : VALIDÉE",
		"",
		"**Synthèse** : Oui.",
		"",
		"#### 💡 Analyse détaillée",
		"- arg 1",
		"- arg 2",
		"",
		"#### ⚠️ Risques identifiés",
		"- risque",
		"",
		"#### ✅ Recommandations",
		"1. reco",
		"",
		"---",
		"*Sources juridiques : A1__0, A2__0*",
	}, "\n")
	assert.Equal(t, want, FormatAnswerMarkdown(a))
}

func TestFormatAnswerMarkdown_SkipsEmptySections(t *testing.T) {
	out := FormatAnswerMarkdown(models.StructuredAnswer{Synthese: "Rien."})
	assert.Equal(t, "\n**Synthèse** : Rien.\n", out)
}

func TestFormatAnalysisForDisplay(t *testing.T) {
	out := FormatAnalysisForDisplay(models.StructuredAnswer{
		HypothesisOriginale: "hyp",
		TextesApplicables:   []string{"A1__0"},
		Recommandations:     []string{"r1", "r2"},
	})

	assert.Contains(t, out, "📋 ANALYSE JURIDIQUE")
	assert.Contains(t, out, "💡 Hypothèse: hyp")
	assert.Contains(t, out, "📖 Qualification: N/A")
	assert.Contains(t, out, "📚 Textes (1):\n   1. A1__0\n")
	assert.Contains(t, out, "✅ Recommandations:\n   1. r1\n   2. r2\n")
	assert.NotContains(t, out, "Argumentation")
	assert.NotContains(t, out, "Validation")
	assert.NotContains(t, out, "Risques")
	assert.NotContains(t, out, "Synthèse")
}

func TestFormatAnalysisForDisplay_RisksAndSynthesis(t *testing.T) {
	out := FormatAnalysisForDisplay(models.StructuredAnswer{
		Argumentation:   []string{"arg"},
		Risques:         []string{"prescription", "preuve"},
		Synthese:        "La procédure doit être respectée.",
		Recommandations: []string{"reco"},
	})

	assert.Contains(t, out, "⚠️ Risques:\n   1. prescription\n   2. preuve\n")
	assert.Contains(t, out, "📝 Synthèse: La procédure doit être respectée.\n")

	argAt := strings.Index(out, "💡 Argumentation:")
	risksAt := strings.Index(out, "⚠️ Risques:")
	synthAt := strings.Index(out, "📝 Synthèse:")
	recoAt := strings.Index(out, "✅ Recommandations:")
	assert.True(t, argAt < risksAt && risksAt < synthAt && synthAt < recoAt, "sections out of order:\n%s", out)
}
