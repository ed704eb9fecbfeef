package legifrance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_FallsBackToBlockFields(t *testing.T) {
	article := Normalize(SearchResult{
		ID:      "LEGIARTI1",
		Title:   "Article 1240",
		Etat:    "VIGUEUR",
		Content: "<div>Tout fait quelconque de l'homme</div>",
		Sections: []Section{{
			Title:    "Chapitre II",
			Extracts: []Extract{{ID: "X", Values: []string{"  "}}},
		}},
	})

	assert.Equal(t, "LEGIARTI1", article.ID)
	assert.Equal(t, "Article 1240", article.Title)
	assert.Equal(t, "Code inconnu", article.CodeName)
	assert.Equal(t, "VIGUEUR", article.LegalStatus)
	assert.Equal(t, "Tout fait quelconque de l'homme", article.Content)
	assert.Empty(t, article.Section)
	assert.Equal(t, SourceAPI, article.Source)
}

func TestNormalize_ExtractInheritsFromSectionAndBlock(t *testing.T) {
	article := Normalize(SearchResult{
		ID:       "BLOCK",
		CodeName: "Code civil",
		Sections: []Section{{
			Title:       "Titre III",
			LegalStatus: "ABROGE",
			Extracts:    []Extract{{Values: []string{"texte"}}},
		}},
	})

	assert.Equal(t, "BLOCK", article.ID)
	assert.Equal(t, "Titre III", article.Title)
	assert.Equal(t, "ABROGE", article.LegalStatus)
	assert.Equal(t, "Code civil", article.CodeName)
}

func TestNormalizeAll_Limit(t *testing.T) {
	resp := &SearchResponse{Results: make([]SearchResult, 12)}
	assert.Len(t, NormalizeAll(resp, 10), 10)
	assert.Len(t, NormalizeAll(resp, 0), 12)
	assert.Nil(t, NormalizeAll(nil, 10))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tags and spaces", in: "<b>Article</b>   premier\t\n texte", want: "Article premier texte"},
		{name: "paragraphs kept", in: "<p>Alinéa 1</p><p>Alinéa 2</p>", want: "Alinéa 1\n\nAlinéa 2"},
		{name: "blank lines kept", in: "un\n\n\n  deux", want: "un\n\ndeux"},
		{name: "entities", in: "l&#39;employeur &amp; le salari&eacute;", want: "l'employeur & le salarié"},
		{name: "br is a line break", in: "a<br/>b", want: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCodes(t *testing.T) {
	list := Codes()
	assert.Len(t, list, 12)
	assert.Equal(t, "Code civil", list[0].Label)
	assert.Equal(t, "12", list[11].ID)

	list[0].Label = "mutated"
	assert.Equal(t, "Code civil", Codes()[0].Label)

	code, ok := LookupCode("2")
	assert.True(t, ok)
	assert.Equal(t, "Code du travail", code.Label)

	code, ok = LookupCode("code pénal")
	assert.True(t, ok)
	assert.Equal(t, "4", code.ID)

	_, ok = LookupCode("tous")
	assert.False(t, ok)
}
