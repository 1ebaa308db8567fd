// Package chat is the conversation orchestrator: it classifies the user's
// text, picks a prompt, calls the generator and decorates the reply with
// health warnings and disclaimers.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// Service exposes chat capabilities.
type Service interface {
	Send(ctx context.Context, req SendRequest) (SendResponse, error)
	History(ctx context.Context, sessionID string) ([]Message, error)
	Reset(ctx context.Context, sessionID string, telugu bool) (Message, error)
}

type service struct {
	cfg        Config
	classifier *healthtopic.Classifier
	prompts    *prompt.Library
	gen        textgen.Generator
	history    HistoryStore
	images     ImageStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the chat domain. images may be nil, in which case
// uploads are sent to the model but not archived.
func NewService(cfg Config, classifier *healthtopic.Classifier, prompts *prompt.Library, gen textgen.Generator, history HistoryStore, images ImageStore, logger *slog.Logger) Service {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	return &service{
		cfg:        cfg,
		classifier: classifier,
		prompts:    prompts,
		gen:        gen,
		history:    history,
		images:     images,
		logger:     logger.With("component", "chat.service"),
		now:        time.Now,
	}
}

func (s *service) Send(ctx context.Context, req SendRequest) (SendResponse, error) {
	text := strings.TrimSpace(Sanitize(req.Text))
	if err := s.validate(text, req.Image, req.Telugu); err != nil {
		return SendResponse{}, err
	}

	mode, known := prompt.ParseMode(req.Mode)
	if !known && strings.TrimSpace(req.Mode) != "" {
		s.logger.Debug("unknown chat mode, using general", "mode", req.Mode)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var result healthtopic.Result
	if text != "" {
		result = s.classifier.ClassifyFor(text, req.Telugu)
		metrics.Classifications.WithLabelValues(result.Outcome()).Inc()
	}

	var (
		instruction string
		specialized bool
	)
	switch {
	case text == "":
		instruction = s.prompts.ImageOnly(req.Telugu)
	case mode == prompt.ModeGeneral && result.RequiresSpecializedPrompt:
		instruction = s.classifier.MedicalPrompt(text, req.Telugu)
		specialized = true
	default:
		instruction = s.prompts.Build(mode, text, req.Telugu)
	}

	userMsg := Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		Mode:      mode,
		Timestamp: s.now().UTC(),
	}
	if text == "" {
		userMsg.Content = messages.ImagePlaceholder.Pick(req.Telugu)
	}

	genReq := textgen.Request{Prompt: instruction, Temperature: s.cfg.Temperature}
	if req.Image != nil {
		genReq.Image = &textgen.Image{MIMEType: req.Image.MIMEType, Data: req.Image.Data}
	}

	resp, err := s.gen.Generate(ctx, genReq)
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = textgen.ErrEmpty
	}
	if err != nil {
		s.logger.Error("chat generation failed", "session_id", sessionID, "mode", mode, "error", err)
		return SendResponse{}, apperrors.Wrap("llm_error", messages.GenerationFailed.Pick(req.Telugu), err)
	}
	metrics.ObserveUsage(resp.Usage)
	if req.Image != nil {
		userMsg.Image = s.archiveImage(ctx, sessionID, userMsg.ID, req.Image)
	}

	reply := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   s.compose(strings.TrimSpace(resp.Text), mode, result, specialized, req.Telugu),
		Mode:      mode,
		Timestamp: s.now().UTC(),
	}
	if err := s.history.Append(ctx, sessionID, s.cfg.HistoryLimit, userMsg, reply); err != nil {
		s.logger.Warn("chat history append failed", "session_id", sessionID, "error", err)
	}

	s.logger.Info("chat reply generated",
		"session_id", sessionID,
		"mode", mode,
		"outcome", result.Outcome(),
		"specialized", specialized,
		"image", req.Image != nil,
	)
	return SendResponse{
		SessionID:         sessionID,
		Mode:              mode,
		UserMessage:       userMsg,
		Reply:             reply,
		Classification:    result,
		SpecializedPrompt: specialized,
		Usage:             resp.Usage,
	}, nil
}

func (s *service) History(ctx context.Context, sessionID string) ([]Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.Wrap("invalid_input", "session id is required", nil)
	}
	msgs, err := s.history.List(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load chat history", err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Reset clears the transcript and returns the "chat cleared" greeting.
func (s *service) Reset(ctx context.Context, sessionID string, telugu bool) (Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Message{}, apperrors.Wrap("invalid_input", "session id is required", nil)
	}
	if err := s.history.Clear(ctx, sessionID); err != nil {
		return Message{}, apperrors.Wrap("storage_error", "failed to clear chat history", err)
	}
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   messages.Cleared.Pick(telugu),
		Mode:      prompt.ModeGeneral,
		Timestamp: s.now().UTC(),
	}, nil
}

func (s *service) validate(text string, img *ImageUpload, telugu bool) error {
	if text == "" && img == nil {
		return apperrors.Wrap("invalid_input", messages.EmptyMessage.Pick(telugu), nil)
	}
	if img == nil {
		return nil
	}
	if _, ok := imageExtension(img.MIMEType); !ok || len(img.Data) == 0 || len(img.Data) > s.cfg.MaxImageBytes {
		return apperrors.Wrap("invalid_input", messages.InvalidImage.Pick(telugu), nil)
	}
	return nil
}

// archiveImage stores the upload. Failures are logged and the message keeps
// no reference; the model still receives the image inline.
func (s *service) archiveImage(ctx context.Context, sessionID, messageID string, img *ImageUpload) *ImageRef {
	if s.images == nil {
		return nil
	}
	ext, _ := imageExtension(img.MIMEType)
	key := fmt.Sprintf("chat/%s/%s%s", sessionID, messageID, ext)
	url, err := s.images.Put(ctx, key, img.MIMEType, img.Data)
	if err != nil {
		s.logger.Warn("chat image archive failed", "session_id", sessionID, "key", key, "error", err)
		return nil
	}
	return &ImageRef{Key: key, URL: url, MIMEType: img.MIMEType, Size: len(img.Data)}
}

// compose puts the emergency warning first, then the matching first-aid
// steps, the model reply, any matched condition advice, and the disclaimer
// for health answers.
func (s *service) compose(reply string, mode prompt.Mode, result healthtopic.Result, specialized, telugu bool) string {
	parts := make([]string, 0, 5)
	if result.IsEmergency {
		parts = append(parts, s.classifier.EmergencyWarning(telugu))
		if guide, ok := s.classifier.FirstAidSummary(result.FirstAidKey, telugu); ok {
			parts = append(parts, guide)
		}
	}
	parts = append(parts, reply)
	if result.ConditionAdvice != "" {
		parts = append(parts, "💡 "+result.ConditionAdvice)
	}
	if mode == prompt.ModeHealth || specialized {
		parts = append(parts, s.classifier.Disclaimer(telugu))
	}
	return strings.Join(parts, "\n\n")
}
