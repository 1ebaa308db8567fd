package googlespeech

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/yanqian/jeevamithra/internal/domain/speech"
)

type recognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model"`
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  struct {
		Content string `json:"content"`
	} `json:"audio"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

func recognizeStatusText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid audio format or configuration"
	case http.StatusUnauthorized:
		return "Invalid API key"
	case http.StatusForbidden:
		return "API quota exceeded or access denied"
	default:
		return ""
	}
}

// Recognize transcribes req.Audio and returns the first alternative of the
// first result.
func (c *Client) Recognize(ctx context.Context, req speech.TranscribeRequest) (speech.Transcript, error) {
	body := recognizeRequest{Config: recognitionConfig{
		Encoding:                   req.Encoding,
		SampleRateHertz:            req.SampleRateHertz,
		LanguageCode:               req.LanguageCode,
		EnableAutomaticPunctuation: true,
		Model:                      "latest_long",
	}}
	body.Audio.Content = base64.StdEncoding.EncodeToString(req.Audio)

	var out recognizeResponse
	if err := c.post(ctx, c.cfg.STTURL, body, &out, recognizeStatusText, "Speech API"); err != nil {
		return speech.Transcript{}, err
	}
	if len(out.Results) == 0 {
		return speech.Transcript{}, speech.ErrNoSpeech
	}
	alts := out.Results[0].Alternatives
	if len(alts) == 0 {
		return speech.Transcript{}, &speech.RemoteError{Status: http.StatusOK, Message: "No transcription alternatives found"}
	}
	c.logger.Debug("transcription received", "language", req.LanguageCode, "confidence", alts[0].Confidence)
	return speech.Transcript{Text: alts[0].Transcript, Confidence: alts[0].Confidence, LanguageCode: req.LanguageCode}, nil
}

var _ speech.Recognizer = (*Client)(nil)
