package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"legalassist-backend/models"

	"github.com/go-pdf/fpdf"
)

const pdfTitle = "Analyse juridique – Assistant Légifrance + Mistral"

// core fonts are cp1252; these are mapped to plain ASCII first
var typographicReplacer = strings.NewReplacer(
	"’", "'",
	"“", `"`,
	"”", `"`,
	"•", "-",
	"–", "-",
	"—", "-",
	"…", "...",
)

// cleanPDFText applies the typographic replacements and drops pictographs the core fonts cannot draw
func cleanPDFText(s string) string {
	s = typographicReplacer.Replace(s)
	return strings.Map(func(r rune) rune {
		if r == '\uFE0F' || unicode.Is(unicode.So, r) {
			return -1
		}
		return r
	}, s)
}

// BuildAnalysisPDF renders an answer as a one-column A4 report
func BuildAnalysisPDF(question string, a models.StructuredAnswer) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	write := func(style string, size, lineHeight float64, text string) {
		pdf.SetFont("Arial", style, size)
		pdf.MultiCell(0, lineHeight, tr(cleanPDFText(text)), "", "", false)
	}
	heading := func(text string) {
		write("B", 12, 8, text)
	}

	write("B", 16, 10, pdfTitle)
	pdf.Ln(4)

	write("", 12, 8, "Question : "+question)
	pdf.Ln(4)

	qualification := a.Qualification
	if qualification == "" {
		qualification = "—"
	}
	heading("Qualification :")
	write("", 12, 8, qualification)
	pdf.Ln(3)

	heading("Textes applicables :")
	if len(a.TextesApplicables) == 0 {
		write("", 12, 6, "Aucun texte cité.")
	}
	for _, t := range a.TextesApplicables {
		write("", 12, 6, "- "+t)
	}
	pdf.Ln(3)

	heading("Argumentation :")
	for i, arg := range a.Argumentation {
		write("", 12, 6, fmt.Sprintf("%d. %s", i+1, arg))
		pdf.Ln(1)
	}

	pdf.Ln(2)
	heading("Risques :")
	for _, r := range a.Risques {
		write("", 12, 6, "- "+r)
	}

	pdf.Ln(2)
	heading("Synthèse :")
	write("", 12, 6, a.Synthese)

	if len(a.Recommandations) > 0 {
		pdf.Ln(2)
		heading("Recommandations :")
		for _, r := range a.Recommandations {
			write("", 12, 6, "- "+r)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
