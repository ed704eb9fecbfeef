package legifrance

import (
	"strings"

	"legalassist-backend/models"
)

var codes = []models.LegalCode{
	{ID: "1", Label: "Code civil"},
	{ID: "2", Label: "Code du travail"},
	{ID: "3", Label: "Code de commerce"},
	{ID: "4", Label: "Code pénal"},
	{ID: "5", Label: "Code de la route"},
	{ID: "6", Label: "Code de la santé publique"},
	{ID: "7", Label: "Code de l'action sociale et des familles"},
	{ID: "8", Label: "Code de l'éducation"},
	{ID: "9", Label: "Code de la propriété intellectuelle"},
	{ID: "10", Label: "Code de l'environnement"},
	{ID: "11", Label: "Code général des impôts"},
	{ID: "12", Label: "Code des postes et des communications électroniques"},
}

// Codes returns the searchable codes in catalogue order
func Codes() []models.LegalCode {
	out := make([]models.LegalCode, len(codes))
	copy(out, codes)
	return out
}

// LookupCode resolves a catalogue number ("2") or a label, case-insensitively.
func LookupCode(choice string) (models.LegalCode, bool) {
	choice = strings.TrimSpace(choice)
	for _, c := range codes {
		if c.ID == choice || strings.EqualFold(c.Label, choice) {
			return c, true
		}
	}
	return models.LegalCode{}, false
}
