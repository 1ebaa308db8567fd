package kvstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/news"
)

func TestMemoryStoreNews(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()

	_, ok, err := s.Load(ctx, "en")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Save(ctx, "en", news.Item{Headline: "first"}))
	require.NoError(t, s.Save(ctx, "en", news.Item{Headline: "second"}))
	item, ok, err := s.Load(ctx, "en")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", item.Headline)

	_, ok, _ = s.Load(ctx, "te")
	require.False(t, ok)
}

func TestMemoryStoreAudioExpires(t *testing.T) {
	s := NewMemoryStore(Options{AudioTTL: time.Minute})
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.PutAudio(ctx, "en-IN:hello", []byte("mp3")))
	got, ok, err := s.GetAudio(ctx, "en-IN:hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("mp3"), got)

	now = now.Add(2 * time.Minute)
	_, ok, err = s.GetAudio(ctx, "en-IN:hello")
	require.NoError(t, err)
	require.False(t, ok)
}

// A stale read racing a fresh write must not delete the fresh entry.
func TestMemoryStoreAudioExpiryKeepsConcurrentRefresh(t *testing.T) {
	s := NewMemoryStore(Options{AudioTTL: time.Minute})
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()
	var refresh func()
	s.now = func() time.Time {
		if refresh != nil {
			hook := refresh
			refresh = nil
			hook()
		}
		return now
	}

	require.NoError(t, s.PutAudio(ctx, "en-IN:hello", []byte("old")))
	now = now.Add(2 * time.Minute)
	refresh = func() {
		require.NoError(t, s.PutAudio(ctx, "en-IN:hello", []byte("fresh")))
	}

	_, ok, err := s.GetAudio(ctx, "en-IN:hello")
	require.NoError(t, err)
	require.False(t, ok, "the read saw the stale entry")

	got, ok, err := s.GetAudio(ctx, "en-IN:hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("fresh"), got)
}

func TestMemoryStoreSweepsUnreadEntries(t *testing.T) {
	s := NewMemoryStore(Options{AudioTTL: time.Minute, HistoryTTL: time.Minute})
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.PutAudio(ctx, fmt.Sprintf("en-IN:clip %d", i), []byte("mp3")))
		require.NoError(t, s.Append(ctx, fmt.Sprintf("s%d", i), 10, chat.Message{Content: "hi"}))
	}
	require.Len(t, s.audio, 5)
	require.Len(t, s.history, 5)

	now = now.Add(5 * time.Minute)
	require.NoError(t, s.PutAudio(ctx, "en-IN:new", []byte("mp3")))
	require.Len(t, s.audio, 1)
	require.Empty(t, s.history)

	require.NoError(t, s.Append(ctx, "live", 10, chat.Message{Content: "hi"}))
	now = now.Add(2 * time.Minute)
	s.Sweep()
	require.Empty(t, s.audio)
	require.Empty(t, s.history)
}

func TestMemoryStoreHistoryBounded(t *testing.T) {
	s := NewMemoryStore(Options{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, "s1", 4, chat.Message{ID: fmt.Sprint(i)}))
	}
	msgs, err := s.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	require.Equal(t, "1", msgs[0].ID)
	require.Equal(t, "4", msgs[3].ID)

	msgs[0].ID = "mutated"
	again, _ := s.List(ctx, "s1")
	require.Equal(t, "1", again[0].ID)

	require.NoError(t, s.Clear(ctx, "s1"))
	msgs, err = s.List(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestMemoryStoreHistoryExpires(t *testing.T) {
	s := NewMemoryStore(Options{HistoryTTL: time.Hour})
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "s1", 0, chat.Message{ID: "a"}))
	now = now.Add(2 * time.Hour)
	msgs, err := s.List(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, msgs)

	require.NoError(t, s.Append(ctx, "s1", 0, chat.Message{ID: "b"}))
	msgs, _ = s.List(ctx, "s1")
	require.Len(t, msgs, 1)
	require.Equal(t, "b", msgs[0].ID)
}

func TestAudioDigestIsStable(t *testing.T) {
	require.Equal(t, audioDigest("te-IN:నమస్కారం"), audioDigest("te-IN:నమస్కారం"))
	require.NotEqual(t, audioDigest("te-IN:a"), audioDigest("en-IN:a"))
	require.Len(t, audioDigest("x"), 64)
}
