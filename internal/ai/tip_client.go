package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/footprint"
	"github.com/shinyyama/trace-green-backend/internal/reqctx"
)

// Tip is a reduction suggestion. Source is "gemini" or "static".
type Tip struct {
	Text     string            `json:"text"`
	Category emission.Category `json:"category,omitempty"`
	Source   string            `json:"source"`
}

type TipClient interface {
	Suggest(ctx context.Context, s footprint.Summary) Tip
}

type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	temp := float32(0.4)
	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return res.Text(), nil
}

type GeminiTipClient struct {
	gen     generator
	timeout time.Duration
	log     *zap.Logger
}

// NewTipClient returns a Gemini backed client, or a static one when apiKey is empty.
func NewTipClient(ctx context.Context, apiKey, model string, log *zap.Logger) (TipClient, error) {
	if apiKey == "" {
		return StaticTipClient{}, nil
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiTipClient{
		gen:     &geminiGenerator{client: client, model: model},
		timeout: 8 * time.Second,
		log:     log,
	}, nil
}

func (c *GeminiTipClient) Suggest(ctx context.Context, s footprint.Summary) Tip {
	fallback := StaticTipClient{}.Suggest(ctx, s)
	if len(s.Shares) == 0 {
		return fallback
	}
	log := reqctx.Logger(ctx, c.log)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.gen.Generate(ctx, buildTipPrompt(s))
	if err != nil {
		log.Warn("tip generation failed", zap.Error(err))
		return fallback
	}
	text, err := ParseTip(raw)
	if err != nil {
		log.Warn("tip parse failed", zap.Int("len", len(raw)), zap.Error(err))
		return fallback
	}
	log.Debug("tip generated", zap.Duration("latency", time.Since(start)))
	return Tip{Text: text, Category: fallback.Category, Source: "gemini"}
}
