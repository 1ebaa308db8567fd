package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/news"
)

// ValkeyStore persists shared state in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	opts   Options
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, opts Options) *ValkeyStore {
	return &ValkeyStore{client: client, opts: opts.withDefaults()}
}

// Load returns the snapshot stored for lang.
func (s *ValkeyStore) Load(ctx context.Context, lang string) (news.Item, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.newsKey(lang)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return news.Item{}, false, nil
		}
		return news.Item{}, false, err
	}
	var item news.Item
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return news.Item{}, false, fmt.Errorf("decode news snapshot: %w", err)
	}
	return item, true, nil
}

// Save replaces the snapshot for lang. Snapshots do not expire.
func (s *ValkeyStore) Save(ctx context.Context, lang string, item news.Item) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.setString(ctx, s.newsKey(lang), string(payload), 0)
}

// GetAudio returns cached MP3 bytes.
func (s *ValkeyStore) GetAudio(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(s.audioKey(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// PutAudio caches MP3 bytes for the configured TTL.
func (s *ValkeyStore) PutAudio(ctx context.Context, key string, audio []byte) error {
	return s.setString(ctx, s.audioKey(key), valkey.BinaryString(audio), s.opts.AudioTTL)
}

// Append pushes msgs, trims the list to limit and refreshes the expiry in
// one round trip.
func (s *ValkeyStore) Append(ctx context.Context, sessionID string, limit int, msgs ...chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	elems := make([]string, 0, len(msgs))
	for _, m := range msgs {
		payload, err := json.Marshal(m)
		if err != nil {
			return err
		}
		elems = append(elems, string(payload))
	}
	key := s.historyKey(sessionID)
	cmds := valkey.Commands{
		s.client.B().Rpush().Key(key).Element(elems...).Build(),
	}
	if limit > 0 {
		cmds = append(cmds, s.client.B().Ltrim().Key(key).Start(-int64(limit)).Stop(-1).Build())
	}
	cmds = append(cmds, s.client.B().Expire().Key(key).Seconds(ttlSeconds(s.opts.HistoryTTL)).Build())
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

// List returns the transcript oldest first.
func (s *ValkeyStore) List(ctx context.Context, sessionID string) ([]chat.Message, error) {
	raw, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.historyKey(sessionID)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]chat.Message, 0, len(raw))
	for _, payload := range raw {
		var m chat.Message
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("decode chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Clear drops the transcript.
func (s *ValkeyStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.historyKey(sessionID)).Build()).Error()
}

func (s *ValkeyStore) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := s.client.B().Set().Key(key).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func ttlSeconds(ttl time.Duration) int64 {
	if ttl < time.Second {
		return 1
	}
	return int64(ttl / time.Second)
}

func (s *ValkeyStore) newsKey(lang string) string {
	return fmt.Sprintf("%s:news:%s", s.opts.Prefix, lang)
}

func (s *ValkeyStore) audioKey(key string) string {
	return fmt.Sprintf("%s:tts:%s", s.opts.Prefix, audioDigest(key))
}

func (s *ValkeyStore) historyKey(sessionID string) string {
	return fmt.Sprintf("%s:chat:%s", s.opts.Prefix, sessionID)
}
