package service

import (
	"fmt"
	"strings"

	"legalassist-backend/models"
)

// FormatAnswerMarkdown renders an answer as the markdown shown by the web client
func FormatAnswerMarkdown(a models.StructuredAnswer) string {
	var lines []string

	if a.ValidationHypothesis != "" {
		lines = append(lines, "### ⚖️ Conclusion : "+a.ValidationHypothesis)
	}
	lines = append(lines, "")

	if a.Synthese != "" {
		lines = append(lines, "**Synthèse** : "+a.Synthese, "")
	}

	if len(a.Argumentation) > 0 {
		lines = append(lines, "#### 💡 Analyse détaillée")
		for _, arg := range a.Argumentation {
			lines = append(lines, "- "+arg)
		}
		lines = append(lines, "")
	}

	if len(a.Risques) > 0 {
		lines = append(lines, "#### ⚠️ Risques identifiés")
		for _, r := range a.Risques {
			lines = append(lines, "- "+r)
		}
		lines = append(lines, "")
	}

	if len(a.Recommandations) > 0 {
		lines = append(lines, "#### ✅ Recommandations")
		for _, r := range a.Recommandations {
			lines = append(lines, "1. "+r)
		}
		lines = append(lines, "")
	}

	if len(a.TextesApplicables) > 0 {
		lines = append(lines, "---", fmt.Sprintf("*Sources juridiques : %s*", strings.Join(a.TextesApplicables, ", ")))
	}

	return strings.Join(lines, "\n")
}

// FormatAnalysisForDisplay renders an answer for the terminal
func FormatAnalysisForDisplay(a models.StructuredAnswer) string {
	rule := strings.Repeat("=", 70)
	var sb strings.Builder

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("📋 ANALYSE JURIDIQUE\n")
	sb.WriteString(rule + "\n")

	if a.HypothesisOriginale != "" {
		fmt.Fprintf(&sb, "\n💡 Hypothèse: %s\n", a.HypothesisOriginale)
	}
	if a.ValidationHypothesis != "" {
		fmt.Fprintf(&sb, "\n✓ Validation: %s\n", a.ValidationHypothesis)
	}
	qualification := a.Qualification
	if qualification == "" {
		qualification = "N/A"
	}
	fmt.Fprintf(&sb, "\n📖 Qualification: %s\n", qualification)

	writeNumbered(&sb, fmt.Sprintf("📚 Textes (%d):", len(a.TextesApplicables)), a.TextesApplicables)
	writeNumbered(&sb, "💡 Argumentation:", a.Argumentation)
	writeNumbered(&sb, "⚠️ Risques:", a.Risques)
	if a.Synthese != "" {
		fmt.Fprintf(&sb, "\n📝 Synthèse: %s\n", a.Synthese)
	}
	writeNumbered(&sb, "✅ Recommandations:", a.Recommandations)

	sb.WriteString("\n" + rule)
	return sb.String()
}

func writeNumbered(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s\n", heading)
	for i, item := range items {
		fmt.Fprintf(sb, "   %d. %s\n", i+1, item)
	}
}
