// File: .\internal\infra\adapters\ai\gemini_adapter.go
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"google.golang.org/genai"

	"grasshopper/internal/domain/ports/adapter"
)

var (
	_ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)
	_ adapter.TokenCounter     = (*GeminiAdapter)(nil)
)

type GeminiAdapter struct {
	client     *genai.Client
	imageModel string
	chatModel  string
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, imageModel, chatModel string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	if imageModel == "" {
		imageModel = "imagen-3.0-generate-002"
	}
	if chatModel == "" {
		chatModel = "gemini-2.0-flash"
	}
	return &GeminiAdapter{client: c, imageModel: imageModel, chatModel: chatModel}, nil
}

func (g *GeminiAdapter) Provider() string { return "gemini" }

// GenerateImage returns the image inline as a data URL; Imagen does not host results.
// A square aspect ratio stands in for the requested pixel size.
func (g *GeminiAdapter) GenerateImage(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	n := int32(req.N)
	if n <= 0 {
		n = 1
	}
	resp, err := g.client.Models.GenerateImages(ctx, modelOrDefault(req.Model, g.imageModel), req.Prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: n,
			AspectRatio:    "1:1",
		})
	if err != nil {
		return adapter.ImageResult{}, err
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return adapter.ImageResult{}, errors.New("gemini: no images returned")
	}
	first := resp.GeneratedImages[0]
	if first.Image == nil || len(first.Image.ImageBytes) == 0 {
		if first.RAIFilteredReason != "" {
			return adapter.ImageResult{}, errors.New("gemini: image filtered: " + first.RAIFilteredReason)
		}
		return adapter.ImageResult{}, errors.New("gemini: empty image")
	}
	mime := first.Image.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return adapter.ImageResult{
		URL:           "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(first.Image.ImageBytes),
		RevisedPrompt: first.EnhancedPrompt,
	}, nil
}

func (g *GeminiAdapter) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	system, contents := toGenAIContents(messages)
	if len(contents) == 0 {
		return "", errors.New("gemini: no messages")
	}
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}
	resp, err := g.client.Models.GenerateContent(ctx, modelOrDefault(model, g.chatModel), contents, cfg)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates")
	}
	return resp.Text(), nil
}

func (g *GeminiAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	_, contents := toGenAIContents(messages)
	// Per docs, CountTokens takes []*genai.Content. (NOT []genai.Part)
	resp, err := g.client.Models.CountTokens(ctx, modelOrDefault(model, g.chatModel), contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

// toGenAIContents lifts system messages into one instruction; Gemini has no system role in contents.
func toGenAIContents(msgs []adapter.Message) (string, []*genai.Content) {
	var system []string
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case adapter.RoleSystem:
			system = append(system, m.Content)
		case adapter.RoleAssistant, "model":
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n"), out
}
