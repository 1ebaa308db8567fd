package news

import (
	"context"
	"time"
)

// Item is one agriculture news snapshot, replaced wholesale on each refresh.
type Item struct {
	Headline  string    `json:"headline"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Telugu    bool      `json:"telugu"`
	Fallback  bool      `json:"fallback"`
}

// Store keeps the latest snapshot per language tag.
type Store interface {
	Load(ctx context.Context, lang string) (Item, bool, error)
	Save(ctx context.Context, lang string, item Item) error
}

// Config controls generation and background refresh.
type Config struct {
	Temperature     float32
	RefreshEnabled  bool
	RefreshInterval time.Duration
}
