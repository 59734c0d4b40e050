package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"titledoctor/features/job"
)

// Generator produces improved title variants with a single batched
// Gemini call per job.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Generator, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client error: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}

// titleResult mirrors the strict-JSON shape the prompt demands.
type titleResult struct {
	Viral              string   `json:"viral"`
	ViralReason        string   `json:"viralReason"`
	SEO                string   `json:"seo"`
	SEOReason          string   `json:"seoReason"`
	Professional       string   `json:"professional"`
	ProfessionalReason string   `json:"professionalReason"`
	ThumbnailTexts     []string `json:"thumbnailTexts"`
}

type titleResponse struct {
	Results []titleResult `json:"results"`
}

// ImproveTitles asks for viral, SEO and professional rewrites of every
// title in one request. A parse failure, an empty response, or an
// upstream error are all generation failures; the caller treats them
// uniformly.
func (g *Generator) ImproveTitles(ctx context.Context, videos []job.Video) ([]job.ImprovedTitle, error) {
	if len(videos) == 0 {
		return nil, fmt.Errorf("no videos to improve")
	}

	prompt := BuildPrompt(videos)
	slog.DebugContext(ctx, "generating titles", "model", g.model, "videos", len(videos))

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return ParseResponse(text, videos)
}

// BuildPrompt enumerates every input title into one batched instruction.
func BuildPrompt(videos []job.Video) string {
	var titles strings.Builder
	for i, v := range videos {
		fmt.Fprintf(&titles, "%d. %q\n", i+1, v.Title)
	}

	return fmt.Sprintf(`You are a YouTube growth expert.

For EACH video title below, generate:

1. VIRAL title (emotional, curiosity-driven)
2. SEO title (keyword-rich, searchable)
3. PROFESSIONAL title (brand-safe, clean)

Also:
- Give ONE LINE reason for each title
- Suggest 3 thumbnail texts (MAX 4 words each)
- Do NOT repeat original title

Titles:
%s
Return STRICT JSON ONLY in this exact format:

{
  "results": [
    {
      "viral": "",
      "viralReason": "",
      "seo": "",
      "seoReason": "",
      "professional": "",
      "professionalReason": "",
      "thumbnailTexts": ["", "", ""]
    }
  ]
}
`, titles.String())
}

// ParseResponse decodes the model's strict-JSON reply, tolerating a
// markdown code fence around it, and derives scored variants per video.
func ParseResponse(text string, videos []job.Video) ([]job.ImprovedTitle, error) {
	cleaned := StripCodeFence(text)

	var parsed titleResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("unparsable response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	improved := make([]job.ImprovedTitle, 0, len(parsed.Results))
	for i, r := range parsed.Results {
		if i >= len(videos) {
			break
		}
		variants := []job.TitleVariant{
			{Style: job.StyleViral, Title: r.Viral, Reason: r.ViralReason, Score: ViralScore(r.Viral)},
			{Style: job.StyleSEO, Title: r.SEO, Reason: r.SEOReason, Score: ViralScore(r.SEO)},
			{Style: job.StyleProfessional, Title: r.Professional, Reason: r.ProfessionalReason, Score: ViralScore(r.Professional)},
		}
		improved = append(improved, job.ImprovedTitle{
			Original:       videos[i].Title,
			Variants:       variants,
			ThumbnailTexts: r.ThumbnailTexts,
			Recommended:    recommend(variants),
			URL:            videos[i].URL,
		})
	}
	return improved, nil
}

// recommend picks the highest-scoring style. Variants arrive in
// precedence order (viral > seo > professional), so a strict comparison
// breaks ties in favor of the earlier style.
func recommend(variants []job.TitleVariant) string {
	best := variants[0]
	for _, v := range variants[1:] {
		if v.Score > best.Score {
			best = v
		}
	}
	return best.Style
}

// StripCodeFence removes a ```json ... ``` wrapper the model sometimes
// adds despite the strict-JSON instruction.
func StripCodeFence(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
