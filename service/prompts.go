package service

import (
	"fmt"
	"strings"

	"legalassist-backend/models"
)

const hypothesisSystemMessage = `Tu es un expert juridique français. Analyse la question et génère:
1. **hypothesis**: Une hypothèse juridique plausible (max 200 mots)
2. **keywords**: 4-10 mots-clés techniques pour la recherche
3. **legal_domain**: Domaine parmi [fiscal, civil, pénal, travail, commercial, route, propriété intellectuelle, environnement, général]
4. **context**: Contexte factuel extrait (max 70 mots)
5. **search_scope**: Recommande le périmètre de recherche : 'code_seul' (si la réponse est probablement dans le code), 'code_et_affiliés' (si décrets, arrêtés, ou lois non codifiées sont nécessaires), ou 'jurisprudence_et_code' (si l'interprétation par les tribunaux est clé).

Réponds en JSON strict avec ces clés.`

const synthesisSystemMessage = `Tu es un assistant juridique senior. Ta mission est d'analyser la question posée uniquement à partir des textes de loi fournis dans la section SOURCES.

Tu dois impérativement :
1. ANALYSER en profondeur les SOURCES pour extraire tous les détails pertinents.
2. VALIDER ou CORRIGER l'hypothèse initiale avec les textes légaux.
3. RENSEIGNER l'argumentation en détail en citant précisément les articles pertinents avec [].
4. IDENTIFIER les implications légales, les risques et les recommandations.
5. RÉPONSE: STRICTEMENT en JSON

Format de réponse JSON OBLIGATOIRE avec ces champs :
- validation_hypothesis: "VALIDÉE" ou "CORRIGÉE" + explication
- textes_applicables: liste des IDs des sources utilisées (ex: ["ID1", "ID2"])
- argumentation: liste de paragraphes, CHAQUE citation DOIT utiliser [[source:ID]]
- hypotheses: interprétations possibles
- risques: risques juridiques identifiés
- synthese: synthèse concise
- recommandations: recommandations pratiques

ATTENTION : Si aucune source ne traite directement de la question, dire clairement "AUCUNE SOURCE PERTINENTE" et expliquer pourquoi.`

func buildHypothesisPrompt(question string) string {
	return fmt.Sprintf("QUESTION: %s\nGénère l'analyse hypothétique.", question)
}

// buildSourceBlock renders snippets as labelled blocks the model must cite by id
func buildSourceBlock(snippets []models.Snippet) string {
	blocks := make([]string, 0, len(snippets))
	for _, s := range snippets {
		blocks = append(blocks, fmt.Sprintf("[[source:%s]] - %s\nContenu: %s\n", s.ID, s.Title, s.Text))
	}
	return strings.Join(blocks, "\n---\n")
}

func buildSynthesisPrompt(question, hypothesis, sourceBlock string) string {
	return fmt.Sprintf(`QUESTION JURIDIQUE : %s

HYPOTHÈSE INITIALE : %s

SOURCES OFFICIELLES TROUVÉES :
%s

ANALYSE REQUISE :
1. Pour CHAQUE source, identifie si elle est pertinente pour la question
2. Extrait les informations CLÉS de chaque source pertinente
3. Construit une réponse DÉTAILLÉE avec citations PRÉCISES [[source:ID]]
4. Compare avec l'hypothèse initiale
5. Fournis une réponse complète et documentée qui répond bien à la question posée

RÉPONSE :`, question, hypothesis, sourceBlock)
}
