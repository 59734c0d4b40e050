package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titledoctor/features/job"
	"titledoctor/internal/adapter/gemini"
)

var promptVideos = []job.Video{
	{VideoID: "v1", Title: "My first video", URL: "https://www.youtube.com/watch?v=v1"},
	{VideoID: "v2", Title: `A title with "quotes"`, URL: "https://www.youtube.com/watch?v=v2"},
}

const modelReply = `{
  "results": [
    {
      "viral": "The INSANE Truth About My First Video!",
      "viralReason": "curiosity gap",
      "seo": "First Video Tutorial 2024 Complete Guide",
      "seoReason": "keyword rich",
      "professional": "An Introduction to the Channel",
      "professionalReason": "brand safe",
      "thumbnailTexts": ["INSANE", "THE TRUTH", "MUST SEE"]
    },
    {
      "viral": "You Won't Believe These Quotes!",
      "viralReason": "emotional hook",
      "seo": "Best Quotes Compilation 2024",
      "seoReason": "searchable",
      "professional": "Selected Quotations",
      "professionalReason": "clean",
      "thumbnailTexts": ["QUOTES", "WOW", "BEST OF"]
    }
  ]
}`

func TestBuildPrompt(t *testing.T) {
	prompt := gemini.BuildPrompt(promptVideos)

	assert.Contains(t, prompt, `1. "My first video"`)
	assert.Contains(t, prompt, "2. \"A title with \\\"quotes\\\"\"")
	assert.Contains(t, prompt, "VIRAL title")
	assert.Contains(t, prompt, "SEO title")
	assert.Contains(t, prompt, "PROFESSIONAL title")
	assert.Contains(t, prompt, "STRICT JSON ONLY")
	assert.Contains(t, prompt, `"thumbnailTexts": ["", "", ""]`)
}

func TestParseResponse(t *testing.T) {
	improved, err := gemini.ParseResponse(modelReply, promptVideos)
	require.NoError(t, err)
	require.Len(t, improved, 2)

	first := improved[0]
	assert.Equal(t, "My first video", first.Original)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", first.URL)
	assert.Equal(t, []string{"INSANE", "THE TRUTH", "MUST SEE"}, first.ThumbnailTexts)

	require.Len(t, first.Variants, 3)
	assert.Equal(t, job.StyleViral, first.Variants[0].Style)
	assert.Equal(t, "The INSANE Truth About My First Video!", first.Variants[0].Title)
	assert.Equal(t, "curiosity gap", first.Variants[0].Reason)
	assert.Equal(t, job.StyleSEO, first.Variants[1].Style)
	assert.Equal(t, job.StyleProfessional, first.Variants[2].Style)

	for _, v := range first.Variants {
		assert.GreaterOrEqual(t, v.Score, 50)
		assert.LessOrEqual(t, v.Score, 100)
	}

	// viral: keyword + punctuation + length under 60 beats the others.
	assert.Equal(t, job.StyleViral, first.Recommended)
}

func TestParseResponse_CodeFenced(t *testing.T) {
	fenced := "```json\n" + modelReply + "\n```"

	improved, err := gemini.ParseResponse(fenced, promptVideos)
	require.NoError(t, err)
	assert.Len(t, improved, 2)
}

func TestParseResponse_TiesFavorViral(t *testing.T) {
	// Identical titles score identically; precedence order wins the tie.
	reply := `{"results":[{"viral":"Same Title","seo":"Same Title","professional":"Same Title","thumbnailTexts":[]}]}`

	improved, err := gemini.ParseResponse(reply, promptVideos[:1])
	require.NoError(t, err)
	require.Len(t, improved, 1)
	assert.Equal(t, job.StyleViral, improved[0].Recommended)
}

func TestParseResponse_ExtraResultsIgnored(t *testing.T) {
	improved, err := gemini.ParseResponse(modelReply, promptVideos[:1])
	require.NoError(t, err)
	assert.Len(t, improved, 1)
}

func TestParseResponse_Invalid(t *testing.T) {
	_, err := gemini.ParseResponse("the model rambled instead of JSON", promptVideos)
	assert.Error(t, err)
}

func TestParseResponse_EmptyResults(t *testing.T) {
	_, err := gemini.ParseResponse(`{"results":[]}`, promptVideos)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, gemini.StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, gemini.StripCodeFence("```JSON\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, gemini.StripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, gemini.StripCodeFence("  {\"a\":1}\n"))
}
