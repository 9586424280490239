package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/course-engine/internal/domain"
)

type planShape struct {
	Title   string   `json:"title"`
	Modules []string `json:"modules"`
}

func TestDecodeObjectWithSurroundingProse(t *testing.T) {
	raw := "Sure, here is the plan:\n```json\n{\"title\": \"Intro\", \"modules\": [\"a\", \"b\"]}\n```\nHope this helps!"

	var got planShape
	require.NoError(t, Decode(raw, &got))
	assert.Equal(t, "Intro", got.Title)
	assert.Equal(t, []string{"a", "b"}, got.Modules)
}

func TestDecodeArrayTarget(t *testing.T) {
	raw := `Here you go: [{"title": "One", "modules": []}, {"title": "Two", "modules": []}] done.`

	var got []planShape
	require.NoError(t, Decode(raw, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Two", got[1].Title)
}

func TestDecodeNoJSONFound(t *testing.T) {
	var got planShape
	err := Decode("no structured content at all", &got)

	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeFormat))
	assert.Contains(t, err.Error(), "object")
}

func TestDecodeArrayShapeMismatch(t *testing.T) {
	var got []planShape
	err := Decode(`{"title": "not an array"}`, &got)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "array")
}

func TestDecodeRepairsSingleQuotes(t *testing.T) {
	var got planShape
	require.NoError(t, Decode(`{'title': 'Intro', 'modules': []}`, &got))
	assert.Equal(t, "Intro", got.Title)
}

func TestDecodeRepairsBareKeys(t *testing.T) {
	var got planShape
	require.NoError(t, Decode(`{title: "Intro", modules: []}`, &got))
	assert.Equal(t, "Intro", got.Title)
}

func TestDecodeRepairsTrailingComma(t *testing.T) {
	var got planShape
	require.NoError(t, Decode(`{"title": "Intro", "modules": ["a",],}`, &got))
	assert.Equal(t, []string{"a"}, got.Modules)
}

func TestDecodeRepairsCurlyQuotes(t *testing.T) {
	var got planShape
	require.NoError(t, Decode(`{“title”: “Intro”, “modules”: []}`, &got))
	assert.Equal(t, "Intro", got.Title)
}

func TestRepairQuotesBareValues(t *testing.T) {
	repaired := Repair(`{"difficulty": beginner}`)
	assert.Equal(t, `{"difficulty": "beginner"}`, repaired)
}

func TestRepairPreservesJSONLiterals(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"answered": true}`, `{"answered": true}`},
		{`{"answered": false}`, `{"answered": false}`},
		{`{"answer": null}`, `{"answer": null}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Repair(tt.in))
	}
}

func TestDecodeValidJSONUntouched(t *testing.T) {
	// A value that Repair would mangle must survive when the strict parse
	// succeeds first.
	var got map[string]string
	require.NoError(t, Decode(`{"title": "O'Reilly's guide"}`, &got))
	assert.Equal(t, "O'Reilly's guide", got["title"])
}
