package kvstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/news"
)

type audioRecord struct {
	data      []byte
	expiresAt time.Time
}

type historyRecord struct {
	messages  []chat.Message
	expiresAt time.Time
}

// MemoryStore holds the same state as ValkeyStore in process memory, for a
// single replica or tests.
type MemoryStore struct {
	opts    Options
	now     func() time.Time
	mu      sync.RWMutex
	news    map[string]news.Item
	audio   map[string]audioRecord
	history map[string]historyRecord

	nextSweep time.Time
}

// sweepInterval spaces out the expired-entry sweeps run on writes.
const sweepInterval = time.Minute

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:    opts.withDefaults(),
		now:     time.Now,
		news:    make(map[string]news.Item),
		audio:   make(map[string]audioRecord),
		history: make(map[string]historyRecord),
	}
}

// Load returns the snapshot stored for lang.
func (s *MemoryStore) Load(_ context.Context, lang string) (news.Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.news[lang]
	return item, ok, nil
}

// Save replaces the snapshot for lang.
func (s *MemoryStore) Save(_ context.Context, lang string, item news.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news[lang] = item
	return nil
}

// GetAudio returns cached audio that has not expired.
func (s *MemoryStore) GetAudio(_ context.Context, key string) ([]byte, bool, error) {
	digest := audioDigest(key)
	s.mu.RLock()
	rec, ok := s.audio[digest]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !s.expired(rec.expiresAt) {
		return rec.data, true, nil
	}
	s.mu.Lock()
	if cur, ok := s.audio[digest]; ok && s.expired(cur.expiresAt) {
		delete(s.audio, digest)
	}
	s.mu.Unlock()
	return nil, false, nil
}

// PutAudio caches audio for the configured TTL.
func (s *MemoryStore) PutAudio(_ context.Context, key string, audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.maybeSweepLocked(now)
	s.audio[audioDigest(key)] = audioRecord{data: audio, expiresAt: now.Add(s.opts.AudioTTL)}
	return nil
}

// Append adds msgs to the session transcript, keeping the newest limit
// entries and extending the expiry.
func (s *MemoryStore) Append(_ context.Context, sessionID string, limit int, msgs ...chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeSweepLocked(s.now())
	rec := s.history[sessionID]
	if s.expired(rec.expiresAt) {
		rec.messages = nil
	}
	all := append(rec.messages, msgs...)
	if limit > 0 && len(all) > limit {
		all = append([]chat.Message(nil), all[len(all)-limit:]...)
	}
	s.history[sessionID] = historyRecord{messages: all, expiresAt: s.now().Add(s.opts.HistoryTTL)}
	return nil
}

// List returns the transcript oldest first.
func (s *MemoryStore) List(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.history[sessionID]
	if !ok || s.expired(rec.expiresAt) {
		return nil, nil
	}
	return append([]chat.Message(nil), rec.messages...), nil
}

// Clear drops the transcript.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, sessionID)
	return nil
}

// Sweep drops expired audio and transcripts that nobody read again.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
}

func (s *MemoryStore) maybeSweepLocked(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(sweepInterval)
	s.sweepLocked()
}

func (s *MemoryStore) sweepLocked() {
	for k, rec := range s.audio {
		if s.expired(rec.expiresAt) {
			delete(s.audio, k)
		}
	}
	for k, rec := range s.history {
		if s.expired(rec.expiresAt) {
			delete(s.history, k)
		}
	}
}

func (s *MemoryStore) expired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && s.now().After(expiresAt)
}
