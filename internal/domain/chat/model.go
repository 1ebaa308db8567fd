package chat

import (
	"context"
	"time"

	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a session transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Mode      prompt.Mode `json:"mode"`
	Image     *ImageRef   `json:"image,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ImageRef points at an uploaded image in object storage.
type ImageRef struct {
	Key      string `json:"key"`
	URL      string `json:"url,omitempty"`
	MIMEType string `json:"mimeType"`
	Size     int    `json:"size"`
}

// ImageUpload is an image attached to a message.
type ImageUpload struct {
	MIMEType string
	Data     []byte
}

// SendRequest is one user turn.
type SendRequest struct {
	SessionID string
	Text      string
	Mode      string
	Telugu    bool
	Image     *ImageUpload
}

// SendResponse is the assistant turn plus how it was produced.
type SendResponse struct {
	SessionID         string             `json:"sessionId"`
	Mode              prompt.Mode        `json:"mode"`
	UserMessage       Message            `json:"userMessage"`
	Reply             Message            `json:"reply"`
	Classification    healthtopic.Result `json:"classification"`
	SpecializedPrompt bool               `json:"specializedPrompt"`
	Usage             metrics.TokenUsage `json:"usage"`
}

// HistoryStore keeps bounded per-session transcripts.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, limit int, msgs ...Message) error
	List(ctx context.Context, sessionID string) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// ImageStore archives uploaded images and returns a URL for them.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Config controls the chat service.
type Config struct {
	Temperature   float32
	MaxImageBytes int
	HistoryLimit  int
}

// Defaults.
const (
	DefaultMaxImageBytes = 10 * 1024 * 1024
	DefaultHistoryLimit  = 100
)
