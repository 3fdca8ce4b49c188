// Package llm writes portfolio copy with Google Gemini.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Achievements is the structured copy returned by GenerateAchievements.
type Achievements struct {
	Summary      string   `json:"summary"`
	BulletPoints []string `json:"bulletPoints"`
}

type generateFunc func(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error)

// Gemini generates achievements and bios.
type Gemini struct {
	model    string
	generate generateFunc
}

// NewGemini creates a Gemini API client. The key is required.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, apperrors.Config("GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.Upstream("gemini", errors.Wrap(err, "failed to create genai client"))
	}

	logger.Info("Initializing Gemini client", zap.String("model", model))
	return &Gemini{
		model: model,
		generate: func(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
			result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
			if err != nil {
				return "", errors.Wrap(err, "failed to generate content")
			}
			return responseText(result)
		},
	}, nil
}

// GenerateAchievements asks for a summary and bullet points as JSON.
func (g *Gemini) GenerateAchievements(ctx context.Context, in Input) (*Achievements, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.7),
	}

	text, err := g.generate(ctx, achievementsPrompt(in), cfg)
	if err != nil {
		return nil, apperrors.Upstream("gemini", errors.Wrap(err, "achievements request failed"))
	}

	var out Achievements
	if err := json.Unmarshal([]byte(stripMarkdownCodeFences(text)), &out); err != nil {
		return nil, apperrors.Upstream("gemini", errors.Wrapf(err, "failed to parse achievements response: %s", text))
	}
	if out.BulletPoints == nil {
		out.BulletPoints = []string{}
	}

	logger.Debug("Generated achievements", zap.Int("bullet_points", len(out.BulletPoints)))
	return &out, nil
}

// GenerateBio asks for a short first-person biography paragraph.
func (g *Gemini) GenerateBio(ctx context.Context, in Input) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.8),
	}

	text, err := g.generate(ctx, bioPrompt(in), cfg)
	if err != nil {
		return "", apperrors.Upstream("gemini", errors.Wrap(err, "bio request failed"))
	}

	bio := strings.Trim(strings.TrimSpace(text), `"`)
	if bio == "" {
		return "", apperrors.Upstream("gemini", errors.New("empty bio returned"))
	}
	return bio, nil
}

func responseText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned from API")
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// stripMarkdownCodeFences removes a surrounding ``` or ```json fence.
func stripMarkdownCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
		cleaned = cleaned[nl+1:]
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
