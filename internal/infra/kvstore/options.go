// Package kvstore backs the short-lived state shared by the HTTP replicas:
// news snapshots, the synthesized-audio cache and chat transcripts. Valkey
// is used when configured, process memory otherwise.
package kvstore

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/news"
	"github.com/yanqian/jeevamithra/internal/domain/speech"
)

// Options control key naming and expiry.
type Options struct {
	Prefix     string
	AudioTTL   time.Duration
	HistoryTTL time.Duration
}

// Defaults.
const (
	DefaultPrefix     = "jeevamithra"
	DefaultAudioTTL   = 24 * time.Hour
	DefaultHistoryTTL = 7 * 24 * time.Hour
)

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.AudioTTL <= 0 {
		o.AudioTTL = DefaultAudioTTL
	}
	if o.HistoryTTL <= 0 {
		o.HistoryTTL = DefaultHistoryTTL
	}
	return o
}

// audioDigest shortens a speech cache key, which embeds up to 100
// characters of text.
func audioDigest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Store is everything kvstore provides.
type Store interface {
	news.Store
	speech.AudioCache
	chat.HistoryStore
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*ValkeyStore)(nil)
)
