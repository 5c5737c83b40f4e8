package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"grasshopper/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var (
	_ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)
	_ adapter.TokenCounter     = (*OpenAIAdapter)(nil)
)

// OpenAIAdapter implements adapter.AIServiceAdapter on the Images and Chat Completions APIs.
type OpenAIAdapter struct {
	client     openai.Client
	imageModel string
	chatModel  string
}

// NewOpenAIAdapter builds a client with SDK retries disabled; every failure is reported once.
func NewOpenAIAdapter(apiKey, baseURL, imageModel, chatModel string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if imageModel == "" {
		imageModel = "dall-e-3"
	}
	if chatModel == "" {
		chatModel = "gpt-4"
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(opts...),
		imageModel: imageModel,
		chatModel:  chatModel,
	}, nil
}

func (o *OpenAIAdapter) Provider() string { return "openai" }

func (o *OpenAIAdapter) GenerateImage(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	n := int64(req.N)
	if n <= 0 {
		n = 1
	}
	size := req.Size
	if size == "" {
		size = string(openai.ImageGenerateParamsSize1024x1024)
	}
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(modelOrDefault(req.Model, o.imageModel)),
		N:              openai.Int(n),
		Size:           openai.ImageGenerateParamsSize(size),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return adapter.ImageResult{}, err
	}
	if resp == nil || len(resp.Data) == 0 {
		return adapter.ImageResult{}, errors.New("openai: no image data")
	}
	first := resp.Data[0]
	return adapter.ImageResult{URL: first.URL, RevisedPrompt: first.RevisedPrompt}, nil
}

func (o *OpenAIAdapter) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelOrDefault(model, o.chatModel)),
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CountTokens estimates prompt tokens locally with the model's BPE encoding.
func (o *OpenAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	model = modelOrDefault(model, o.chatModel)
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	// 3 framing tokens per message plus 3 to prime the reply.
	total := 3
	for _, m := range messages {
		total += 3 + len(enc.Encode(m.Role, nil, nil)) + len(enc.Encode(m.Content, nil, nil))
	}
	return total, nil
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case adapter.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case adapter.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
