package metrics

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenUsage captures approximate LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// TokenCounter estimates token counts with a BPE encoding. The encoding is
// loaded on first use; when it cannot be loaded the counter degrades to a
// whitespace word count.
type TokenCounter struct {
	encodingName string
	once         sync.Once
	enc          *tiktoken.Tiktoken
}

// NewTokenCounter returns a counter for the named tiktoken encoding.
func NewTokenCounter(encodingName string) *TokenCounter {
	if strings.TrimSpace(encodingName) == "" {
		encodingName = "cl100k_base"
	}
	return &TokenCounter{encodingName: encodingName}
}

// Count returns the token count of text.
func (c *TokenCounter) Count(text string) int {
	if c == nil || text == "" {
		return 0
	}
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encodingName)
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return len(strings.Fields(text))
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Usage builds a TokenUsage for a prompt/completion pair.
func (c *TokenCounter) Usage(prompt, completion string) TokenUsage {
	if c == nil {
		return TokenUsage{}
	}
	p := c.Count(prompt)
	out := c.Count(completion)
	return TokenUsage{PromptTokens: p, CompletionTokens: out, TotalTokens: p + out}
}
