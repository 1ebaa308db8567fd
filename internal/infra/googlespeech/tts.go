package googlespeech

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/yanqian/jeevamithra/internal/domain/speech"
)

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize returns MP3 audio for text spoken by voice.
func (c *Client) Synthesize(ctx context.Context, text string, voice speech.Voice) ([]byte, error) {
	var body synthesizeRequest
	body.Input.Text = text
	body.Voice.LanguageCode = voice.LanguageCode
	body.Voice.Name = voice.Name
	body.AudioConfig.AudioEncoding = "MP3"

	var out synthesizeResponse
	if err := c.post(ctx, c.cfg.TTSURL, body, &out, func(int) string { return "" }, "TTS API"); err != nil {
		return nil, err
	}
	if out.AudioContent == "" {
		return nil, nil
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode tts audio: %w", err)
	}
	c.logger.Debug("tts audio received", "voice", voice.Name, "bytes", len(audio))
	return audio, nil
}

var _ speech.Synthesizer = (*Client)(nil)
