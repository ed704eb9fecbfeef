package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "fenced json", in: "Voici:\n```json\n{\"a\": 1}\n```\nFin", want: `{"a": 1}`},
		{name: "fenced without tag", in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "prose around object", in: `Réponse: {"a": {"b": 2}} merci`, want: `{"a": {"b": 2}}`},
		{name: "no object", in: "rien du tout", want: "{}"},
		{name: "closing brace before opening", in: "} puis {", want: "{}"},
		{name: "control characters", in: "{\"a\":\x01\"b\"}", want: `{"a": "b"}`},
		{name: "double backslashes", in: `{"a": "x\\\\y"}`, want: `{"a": "x\\y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestExtractJSON_Idempotent(t *testing.T) {
	for _, in := range []string{`{"a": [1, 2]}`, "```json\n{\"k\": \"v\"}\n```", "no json"} {
		once := ExtractJSON(in)
		assert.Equal(t, once, ExtractJSON(once), in)
	}
}

func TestExtractSimpleKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "Quels sont mes droits en cas de licenciement ?", want: []string{"quels", "sont", "droits", "licenciement"}},
		{in: "Pour les DANS des", want: []string{}},
		{in: "un deux trois quatre cinq sixième septième huitième", want: []string{"deux", "trois", "quatre", "cinq", "sixième"}},
		{in: "L'employeur, l'entreprise; préavis!", want: []string{"employeur", "entreprise", "préavis"}},
		{in: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSimpleKeywords(tt.in))
		})
	}
}
