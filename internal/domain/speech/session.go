package speech

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds one listener's audio state: a FIFO clip cache and the clip
// currently playing.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	capacity int
	order    []string
	clips    map[string]Clip
	current  *Clip
}

func newSession(id string, capacity int) *Session {
	if capacity <= 0 {
		capacity = DefaultSessionCacheSize
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		capacity:  capacity,
		clips:     make(map[string]Clip, capacity),
	}
}

func (s *Session) lookup(key string) (Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clips[key]
	return c, ok
}

// remember caches clip, evicting the oldest entry once full.
func (s *Session) remember(clip Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clips[clip.Key]; ok {
		s.clips[clip.Key] = clip
		return
	}
	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.clips, oldest)
	}
	s.order = append(s.order, clip.Key)
	s.clips[clip.Key] = clip
}

// play makes clip the current one, replacing whatever was playing.
func (s *Session) play(clip Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &clip
}

// Current reports the clip playing, if any.
func (s *Session) Current() (Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Clip{}, false
	}
	return *s.current, true
}

// Stop clears the current clip and reports whether one was playing.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	playing := s.current != nil
	s.current = nil
	return playing
}

// Len is the number of cached clips.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

// SessionLimits bounds the registry.
type SessionLimits struct {
	ClipCapacity int
	MaxOpen      int
	IdleTTL      time.Duration
}

// Sessions is a registry of open sessions. Sessions idle longer than IdleTTL
// are closed, and opening beyond MaxOpen closes the least recently used one.
type Sessions struct {
	mu       sync.Mutex
	limits   SessionLimits
	byID     map[string]*Session
	lastUsed map[string]time.Time
	now      func() time.Time
}

// NewSessions builds a registry. Zero limits take the package defaults.
func NewSessions(limits SessionLimits) *Sessions {
	if limits.ClipCapacity <= 0 {
		limits.ClipCapacity = DefaultSessionCacheSize
	}
	if limits.MaxOpen <= 0 {
		limits.MaxOpen = DefaultMaxSessions
	}
	if limits.IdleTTL <= 0 {
		limits.IdleTTL = DefaultSessionIdleTTL
	}
	return &Sessions{
		limits:   limits,
		byID:     make(map[string]*Session),
		lastUsed: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Open starts a new session after sweeping idle ones and making room.
func (r *Sessions) Open() *Session {
	s := newSession(uuid.NewString(), r.limits.ClipCapacity)
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweepLocked(now)
	for len(r.byID) >= r.limits.MaxOpen {
		r.evictOldestLocked()
	}
	r.byID[s.ID] = s
	r.lastUsed[s.ID] = now
	return s
}

// Get returns an open session and marks it used. Idle sessions are gone.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.Sub(r.lastUsed[id]) > r.limits.IdleTTL {
		r.dropLocked(id)
		return nil, false
	}
	r.lastUsed[id] = now
	return s, true
}

// Close drops a session and its cache.
func (r *Sessions) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.dropLocked(id)
	return true
}

// Count is the number of open sessions.
func (r *Sessions) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Sessions) sweepLocked(now time.Time) {
	for id, used := range r.lastUsed {
		if now.Sub(used) > r.limits.IdleTTL {
			r.dropLocked(id)
		}
	}
}

func (r *Sessions) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, used := range r.lastUsed {
		if oldestID == "" || used.Before(oldest) {
			oldestID, oldest = id, used
		}
	}
	if oldestID == "" {
		return
	}
	r.dropLocked(oldestID)
}

func (r *Sessions) dropLocked(id string) {
	delete(r.byID, id)
	delete(r.lastUsed, id)
}
