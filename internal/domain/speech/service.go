// Package speech covers text-to-speech with per-session audio state and
// speech-to-text for voice input.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

var validate = validator.New()

// Service exposes speech capabilities.
type Service interface {
	OpenSession(ctx context.Context) *Session
	CloseSession(ctx context.Context, sessionID string) error
	Synthesize(ctx context.Context, sessionID string, req SynthesizeRequest) (Clip, error)
	Stop(ctx context.Context, sessionID string) (bool, error)
	Transcribe(ctx context.Context, req TranscribeRequest) (Transcript, error)
}

type service struct {
	sessions    *Sessions
	synthesizer Synthesizer
	recognizer  Recognizer
	cache       AudioCache
	logger      *slog.Logger
}

// NewService wires the speech domain. cache may be nil.
func NewService(cfg Config, synthesizer Synthesizer, recognizer Recognizer, cache AudioCache, logger *slog.Logger) Service {
	return &service{
		sessions: NewSessions(SessionLimits{
			ClipCapacity: cfg.SessionCacheSize,
			MaxOpen:      cfg.MaxSessions,
			IdleTTL:      cfg.SessionIdleTTL,
		}),
		synthesizer: synthesizer,
		recognizer:  recognizer,
		cache:       cache,
		logger:      logger.With("component", "speech.service"),
	}
}

func (s *service) OpenSession(_ context.Context) *Session {
	sess := s.sessions.Open()
	s.logger.Debug("speech session opened", "session_id", sess.ID)
	return sess
}

func (s *service) CloseSession(_ context.Context, sessionID string) error {
	if !s.sessions.Close(sessionID) {
		return apperrors.Wrap("not_found", "speech session not found", nil)
	}
	return nil
}

func (s *service) session(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, apperrors.Wrap("not_found", "speech session not found", nil)
	}
	return sess, nil
}

// Synthesize checks the session cache, then the shared cache, and only then
// calls the synthesizer. The returned clip becomes the session's current one.
func (s *service) Synthesize(ctx context.Context, sessionID string, req SynthesizeRequest) (Clip, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Clip{}, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return Clip{}, apperrors.Wrap("invalid_input", "No text provided for speech synthesis", nil)
	}
	cleaned := CleanForSpeech(req.Text)
	if cleaned == "" {
		return Clip{}, apperrors.Wrap("invalid_input", "No speakable text found after cleaning", nil)
	}

	voice := VoiceFor(req.Telugu)
	key := CacheKey(voice.LanguageCode, cleaned)

	if clip, ok := sess.lookup(key); ok {
		metrics.SpeechCache.WithLabelValues("session", "hit").Inc()
		clip.Cached = true
		sess.play(clip)
		return clip, nil
	}
	metrics.SpeechCache.WithLabelValues("session", "miss").Inc()

	clip := Clip{Key: key, MIMEType: AudioMIMEType, Voice: voice}
	if audio, ok := s.sharedLookup(ctx, key); ok {
		clip.Audio = audio
		clip.Cached = true
	} else {
		if s.synthesizer == nil {
			return Clip{}, apperrors.Wrap("speech_error", "speech synthesis is not configured", nil)
		}
		audio, err := s.synthesizer.Synthesize(ctx, cleaned, voice)
		if err != nil {
			s.logger.Error("speech synthesis failed", "language", voice.Language, "error", err)
			return Clip{}, apperrors.Wrap("speech_error", remoteMessage(err, fmt.Sprintf("Failed to synthesize %s speech", voice.Language)), err)
		}
		if len(audio) == 0 {
			return Clip{}, apperrors.Wrap("speech_error", "No audio content received from TTS API", nil)
		}
		clip.Audio = audio
		if s.cache != nil {
			if err := s.cache.PutAudio(ctx, key, audio); err != nil {
				s.logger.Warn("shared audio cache write failed", "error", err)
			}
		}
		s.logger.Info("speech synthesized", "voice", voice.Name, "chars", len([]rune(cleaned)))
	}

	sess.remember(clip)
	sess.play(clip)
	return clip, nil
}

func (s *service) sharedLookup(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	audio, ok, err := s.cache.GetAudio(ctx, key)
	if err != nil {
		s.logger.Warn("shared audio cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		metrics.SpeechCache.WithLabelValues("shared", "miss").Inc()
		return nil, false
	}
	metrics.SpeechCache.WithLabelValues("shared", "hit").Inc()
	return audio, true
}

func (s *service) Stop(_ context.Context, sessionID string) (bool, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return false, err
	}
	return sess.Stop(), nil
}

func (s *service) Transcribe(ctx context.Context, req TranscribeRequest) (Transcript, error) {
	if len(req.Audio) == 0 {
		return Transcript{}, apperrors.Wrap("invalid_input", "No audio data provided for transcription", nil)
	}
	if err := validate.Struct(req); err != nil {
		return Transcript{}, apperrors.Wrap("invalid_input", "Unsupported language, audio encoding or sample rate", err)
	}
	if req.LanguageCode == "" {
		req.LanguageCode = DefaultLanguageCode
	}
	if req.Encoding == "" {
		req.Encoding = DefaultEncoding
	}
	if req.SampleRateHertz == 0 {
		req.SampleRateHertz = DefaultSampleRate
	}
	if s.recognizer == nil {
		return Transcript{}, apperrors.Wrap("speech_error", "speech recognition is not configured", nil)
	}

	out, err := s.recognizer.Recognize(ctx, req)
	if errors.Is(err, ErrNoSpeech) {
		return Transcript{}, apperrors.Wrap("no_speech", "No speech detected in audio", err)
	}
	if err != nil {
		s.logger.Error("speech recognition failed", "language", req.LanguageCode, "encoding", req.Encoding, "error", err)
		return Transcript{}, apperrors.Wrap("speech_error", remoteMessage(err, "Failed to transcribe audio"), err)
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return Transcript{}, apperrors.Wrap("no_speech", "Empty transcription result", nil)
	}
	out.LanguageCode = req.LanguageCode
	return out, nil
}

func remoteMessage(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return fallback
}
