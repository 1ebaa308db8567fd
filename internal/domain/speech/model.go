package speech

import (
	"context"
	"errors"
	"time"
)

// Voice selects a synthesis voice.
type Voice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	Language     string `json:"language"`
}

var (
	teluguVoice  = Voice{LanguageCode: "te-IN", Name: "te-IN-Standard-A", Language: "Telugu"}
	englishVoice = Voice{LanguageCode: "en-IN", Name: "en-IN-Wavenet-D", Language: "English"}
)

// VoiceFor returns the Telugu or Indian-English voice.
func VoiceFor(telugu bool) Voice {
	if telugu {
		return teluguVoice
	}
	return englishVoice
}

// AudioMIMEType is the format every clip is synthesized in.
const AudioMIMEType = "audio/mpeg"

// SynthesizeRequest asks for text to be spoken.
type SynthesizeRequest struct {
	Text   string `json:"text" validate:"required"`
	Telugu bool   `json:"telugu"`
}

// Clip is synthesized audio.
type Clip struct {
	Key      string `json:"key"`
	Audio    []byte `json:"audio"`
	MIMEType string `json:"mimeType"`
	Voice    Voice  `json:"voice"`
	Cached   bool   `json:"cached"`
}

// TranscribeRequest carries recorded audio. Zero values take the recorder
// defaults (en-US, WEBM_OPUS, 48000 Hz).
type TranscribeRequest struct {
	Audio           []byte `json:"audio" validate:"required"`
	LanguageCode    string `json:"languageCode" validate:"omitempty,oneof=en-US en-IN te-IN hi-IN ta-IN kn-IN ml-IN bn-IN gu-IN mr-IN pa-IN"`
	Encoding        string `json:"encoding" validate:"omitempty,oneof=LINEAR16 FLAC MULAW AMR AMR_WB OGG_OPUS SPEEX_WITH_HEADER_BYTE WEBM_OPUS MP3"`
	SampleRateHertz int    `json:"sampleRateHertz" validate:"omitempty,oneof=8000 12000 16000 24000 48000"`
}

// Recognition defaults.
const (
	DefaultLanguageCode = "en-US"
	DefaultEncoding     = "WEBM_OPUS"
	DefaultSampleRate   = 48000
)

// SupportedLanguages lists the recognizer language codes.
var SupportedLanguages = []string{
	"en-US", "en-IN", "te-IN", "hi-IN", "ta-IN", "kn-IN",
	"ml-IN", "bn-IN", "gu-IN", "mr-IN", "pa-IN",
}

// Transcript is the top recognition alternative.
type Transcript struct {
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	LanguageCode string  `json:"languageCode"`
}

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Recognizer turns audio into text. It returns ErrNoSpeech when the audio
// holds nothing recognizable.
type Recognizer interface {
	Recognize(ctx context.Context, req TranscribeRequest) (Transcript, error)
}

// AudioCache is a store shared across sessions and replicas.
type AudioCache interface {
	GetAudio(ctx context.Context, key string) ([]byte, bool, error)
	PutAudio(ctx context.Context, key string, audio []byte) error
}

// ErrNoSpeech reports audio without a transcript.
var ErrNoSpeech = errors.New("speech: no speech detected")

// RemoteError is a failed call to a speech backend, carrying a message fit
// for the user.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Config controls the speech service.
type Config struct {
	SessionCacheSize int
	// MaxSessions caps open sessions; opening one more evicts the least
	// recently used.
	MaxSessions int
	// SessionIdleTTL closes sessions not used for this long.
	SessionIdleTTL time.Duration
}

// Session defaults.
const (
	DefaultSessionCacheSize = 50
	DefaultMaxSessions      = 1000
	DefaultSessionIdleTTL   = 30 * time.Minute
)
