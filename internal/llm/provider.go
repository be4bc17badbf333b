package llm

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned when no API key is configured for the provider.
var ErrNotConfigured = errors.New("llm: provider not configured")

// ErrQuotaExceeded is returned when the provider rejects a call for quota or
// rate-limit reasons and no richer error is available.
var ErrQuotaExceeded = errors.New("llm: quota exceeded")

// Role is the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the running conversation.
type Message struct {
	Role    Role
	Content string
}

// Provider is the interface for chat-completion backends.
type Provider interface {
	// Chat sends the system prompt followed by the conversation history and
	// returns the assistant's reply. The last history message is the user's
	// current utterance.
	Chat(ctx context.Context, system string, history []Message, opts Options) (*Response, error)

	// Name returns the display name of this provider (e.g. "OpenAI").
	Name() string
}

// Options controls generation behavior.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Response holds the provider's output.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	Duration   time.Duration
	StopReason string
}
