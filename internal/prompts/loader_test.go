package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(File, KeyGuidance)
	require.NoError(t, err)
	assert.Contains(t, prompt, "career counselor")
	assert.Contains(t, prompt, "{{.Profile}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(File, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestAllKeysPresent(t *testing.T) {
	ClearCache()

	keys, err := List(File)
	require.NoError(t, err)
	for _, key := range []string{
		KeyGuidance, KeyInterviewQuestions, KeyInterviewFeedback,
		KeyJobSuggestions, KeyDiscovery, KeyStory,
	} {
		assert.Contains(t, keys, key)
	}
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	assert.Equal(t, template, Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"

	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestFormat_ValueNotReexpanded(t *testing.T) {
	result := Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "b"})
	assert.Equal(t, "{{.B}} b", result)
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render(KeyInterviewQuestions, map[string]string{
		"JobRole":         "Backend Engineer",
		"ExperienceLevel": "senior",
		"QuestionCount":   "5",
		"InterviewType":   "technical",
		"Language":        "English",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "5 technical interview questions")
	assert.False(t, strings.Contains(prompt, "{{."), "all placeholders filled")
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get(File, KeyStory)
	require.NoError(t, err)

	prompt2, err := Get(File, KeyStory)
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
