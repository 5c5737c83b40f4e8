package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ImageRequest asks for N images of the given size ("1024x1024").
type ImageRequest struct {
	Prompt string
	Model  string
	N      int
	Size   string
}

// ImageResult carries the first generated image.
type ImageResult struct {
	URL           string
	RevisedPrompt string
}

// ImageGenerator is the port for text-to-image generation.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error)
}

// ChatCompleter is the port for LLM chat. It returns the first choice only.
type ChatCompleter interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// AIServiceAdapter is implemented by every provider.
type AIServiceAdapter interface {
	ImageGenerator
	ChatCompleter
	Provider() string
}

// TokenCounter is optionally implemented by providers that can count prompt tokens.
type TokenCounter interface {
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)
}
