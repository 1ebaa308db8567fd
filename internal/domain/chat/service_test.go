package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
)

func TestSendRoutesHealthQuestionToMedicalPrompt(t *testing.T) {
	env := newTestEnv(Config{})

	resp, err := env.svc.Send(context.Background(), SendRequest{
		SessionID: "s1",
		Text:      "I have a fever and headache, what medicine should I take?",
	})
	require.NoError(t, err)

	require.True(t, resp.SpecializedPrompt)
	require.True(t, resp.Classification.IsHealthRelated)
	require.GreaterOrEqual(t, resp.Classification.Confidence, 0.4)
	require.True(t, strings.HasPrefix(env.gen.last.Prompt, "You are a highly qualified Indian medical professional"))
	require.True(t, strings.HasSuffix(env.gen.last.Prompt, "User's question: I have a fever and headache, what medicine should I take?"))

	require.True(t, strings.HasPrefix(resp.Reply.Content, "Take rest."))
	require.Contains(t, resp.Reply.Content, "For fever: Rest")
	require.True(t, strings.HasSuffix(resp.Reply.Content, env.classifier.Disclaimer(false)))
	require.NotContains(t, resp.Reply.Content, "EMERGENCY")
}

func TestSendEmergencyWarningComesFirst(t *testing.T) {
	env := newTestEnv(Config{})

	resp, err := env.svc.Send(context.Background(), SendRequest{Text: "I have chest pain", Mode: "health", Telugu: true})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	require.True(t, resp.Classification.IsEmergency)
	require.True(t, strings.HasPrefix(resp.Reply.Content, env.classifier.EmergencyWarning(true)))
	require.True(t, strings.HasSuffix(resp.Reply.Content, env.classifier.Disclaimer(true)))
	require.False(t, resp.SpecializedPrompt, "health mode keeps its own template")
	require.Equal(t, prompt.Default().Build(prompt.ModeHealth, "I have chest pain", true), env.gen.last.Prompt)
}

func TestSendEmergencyIncludesFirstAidSteps(t *testing.T) {
	env := newTestEnv(Config{})

	resp, err := env.svc.Send(context.Background(), SendRequest{Text: "My father has chest pain and is sweating", Mode: "health"})
	require.NoError(t, err)
	require.Equal(t, "heart_attack", resp.Classification.FirstAidKey)

	guide, ok := env.classifier.FirstAidSummary("heart_attack", false)
	require.True(t, ok)
	parts := strings.Split(resp.Reply.Content, "\n\n")
	require.GreaterOrEqual(t, len(parts), 3)
	require.Equal(t, env.classifier.EmergencyWarning(false), parts[0])
	require.Equal(t, guide, parts[1])
	require.Equal(t, "Take rest.", parts[2])
}

func TestSendNonEmergencySkipsFirstAid(t *testing.T) {
	env := newTestEnv(Config{})

	resp, err := env.svc.Send(context.Background(), SendRequest{Text: "I keep vomiting after meals", Mode: "health"})
	require.NoError(t, err)
	require.False(t, resp.Classification.IsEmergency)
	require.Equal(t, "continuous_vomiting", resp.Classification.FirstAidKey)
	require.NotContains(t, resp.Reply.Content, "🩹")
}

func TestSendModeTemplateWithoutDecoration(t *testing.T) {
	env := newTestEnv(Config{})

	resp, err := env.svc.Send(context.Background(), SendRequest{Text: "What crop should I plant this season?", Mode: "farming"})
	require.NoError(t, err)
	require.Equal(t, prompt.ModeFarming, resp.Mode)
	require.Equal(t, prompt.Default().Build(prompt.ModeFarming, "What crop should I plant this season?", false), env.gen.last.Prompt)
	require.Equal(t, "Take rest.", resp.Reply.Content)
	require.False(t, resp.Classification.IsHealthRelated)
}

func TestSendUnknownModeUsesGeneral(t *testing.T) {
	env := newTestEnv(Config{})

	resp, err := env.svc.Send(context.Background(), SendRequest{Text: "hello there", Mode: "astrology"})
	require.NoError(t, err)
	require.Equal(t, prompt.ModeGeneral, resp.Mode)
	require.Equal(t, "Please respond in English. User message: hello there", env.gen.last.Prompt)
}

func TestSendValidation(t *testing.T) {
	env := newTestEnv(Config{MaxImageBytes: 8})

	cases := []struct {
		name string
		req  SendRequest
		want string
	}{
		{"empty", SendRequest{Text: "   "}, "Please type a message or attach an image."},
		{"script only", SendRequest{Text: "<script>alert(1)</script>"}, "Please type a message or attach an image."},
		{"gif", SendRequest{Image: &ImageUpload{MIMEType: "image/gif", Data: []byte("GIF89a")}}, "Please upload a JPEG or PNG image up to 10MB."},
		{"too large", SendRequest{Image: &ImageUpload{MIMEType: "image/png", Data: make([]byte, 9)}}, "Please upload a JPEG or PNG image up to 10MB."},
		{"empty image", SendRequest{Image: &ImageUpload{MIMEType: "image/jpeg"}}, "Please upload a JPEG or PNG image up to 10MB."},
		{"telugu", SendRequest{Telugu: true}, "దయచేసి సందేశం టైప్ చేయండి లేదా చిత్రాన్ని జత చేయండి."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Send(context.Background(), tc.req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			require.Equal(t, tc.want, apperrors.Message(err))
		})
	}
	require.Zero(t, env.gen.calls)
}

func TestSendImageOnly(t *testing.T) {
	env := newTestEnv(Config{})
	img := &ImageUpload{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

	resp, err := env.svc.Send(context.Background(), SendRequest{SessionID: "s-img", Image: img, Telugu: true})
	require.NoError(t, err)

	require.Equal(t, prompt.Default().ImageOnly(true), env.gen.last.Prompt)
	require.NotNil(t, env.gen.last.Image)
	require.Equal(t, "image/png", env.gen.last.Image.MIMEType)
	require.Equal(t, "ఈ చిత్రాన్ని చూడండి", resp.UserMessage.Content)

	require.NotNil(t, resp.UserMessage.Image)
	require.True(t, strings.HasPrefix(resp.UserMessage.Image.Key, "chat/s-img/"))
	require.True(t, strings.HasSuffix(resp.UserMessage.Image.Key, ".png"))
	require.Equal(t, "mem://"+resp.UserMessage.Image.Key, resp.UserMessage.Image.URL)
	require.Equal(t, img.Data, env.images.objects[resp.UserMessage.Image.Key])
}

func TestSendImageArchiveFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(Config{})
	env.images.err = errors.New("bucket missing")

	resp, err := env.svc.Send(context.Background(), SendRequest{Text: "what is this leaf spot?", Image: &ImageUpload{MIMEType: "image/jpeg", Data: []byte{1, 2}}})
	require.NoError(t, err)
	require.Nil(t, resp.UserMessage.Image)
	require.NotNil(t, env.gen.last.Image)
}

func TestSendGeneratorFailure(t *testing.T) {
	env := newTestEnv(Config{})
	env.gen.err = errors.New("503 from upstream")

	_, err := env.svc.Send(context.Background(), SendRequest{SessionID: "s2", Text: "hello", Telugu: true})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "llm_error"))
	require.Equal(t, "AI ప్రతిస్పందన పొందడంలో విఫలమైంది", apperrors.Message(err))

	msgs, err := env.svc.History(context.Background(), "s2")
	require.NoError(t, err)
	require.Empty(t, msgs)

	env.gen.err = nil
	env.gen.text = "   "
	_, err = env.svc.Send(context.Background(), SendRequest{SessionID: "s2", Text: "hello"})
	require.True(t, apperrors.IsCode(err, "llm_error"))
}

func TestSendGeneratorFailureDoesNotArchiveImage(t *testing.T) {
	env := newTestEnv(Config{})
	env.gen.err = errors.New("503 from upstream")

	_, err := env.svc.Send(context.Background(), SendRequest{SessionID: "s-fail", Text: "what is this?", Image: &ImageUpload{MIMEType: "image/png", Data: []byte{1}}})
	require.True(t, apperrors.IsCode(err, "llm_error"))
	require.Empty(t, env.images.objects)
}

func TestSendSanitizesScripts(t *testing.T) {
	env := newTestEnv(Config{})

	resp, err := env.svc.Send(context.Background(), SendRequest{Text: "<SCRIPT type=\"x\">steal()</script>namaste"})
	require.NoError(t, err)
	require.Equal(t, "namaste", resp.UserMessage.Content)
	require.NotContains(t, env.gen.last.Prompt, "steal")
}

func TestHistoryAndReset(t *testing.T) {
	env := newTestEnv(Config{HistoryLimit: 2})
	ctx := context.Background()

	_, err := env.svc.Send(ctx, SendRequest{SessionID: "s3", Text: "first question"})
	require.NoError(t, err)
	_, err = env.svc.Send(ctx, SendRequest{SessionID: "s3", Text: "second question"})
	require.NoError(t, err)

	msgs, err := env.svc.History(ctx, "s3")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, RoleUser, msgs[0].Role)
	require.Equal(t, "second question", msgs[0].Content)
	require.Equal(t, RoleAssistant, msgs[1].Role)

	cleared, err := env.svc.Reset(ctx, "s3", false)
	require.NoError(t, err)
	require.Equal(t, "Chat cleared. Let's start fresh!", cleared.Content)

	msgs, err = env.svc.History(ctx, "s3")
	require.NoError(t, err)
	require.Empty(t, msgs)

	_, err = env.svc.History(ctx, " ")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestWelcome(t *testing.T) {
	require.Contains(t, Welcome(prompt.ModeGeneral, false), "Jeevamithra")
	require.Contains(t, Welcome(prompt.ModeFarming, true), "వ్యవసాయ")
	require.Equal(t, Welcome(prompt.ModeGeneral, false), Welcome(prompt.ModeSchemes, false))
}

type testEnv struct {
	svc        Service
	gen        *stubGenerator
	images     *stubImages
	classifier *healthtopic.Classifier
}

func newTestEnv(cfg Config) testEnv {
	gen := &stubGenerator{text: "Take rest."}
	images := &stubImages{objects: map[string][]byte{}}
	classifier := healthtopic.Default()
	svc := NewService(cfg, classifier, prompt.Default(), gen, newMemoryHistory(), images, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return testEnv{svc: svc, gen: gen, images: images, classifier: classifier}
}

type stubGenerator struct {
	text  string
	err   error
	calls int
	last  textgen.Request
}

func (s *stubGenerator) Generate(_ context.Context, req textgen.Request) (textgen.Response, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return textgen.Response{}, s.err
	}
	return textgen.Response{Text: s.text}, nil
}

type stubImages struct {
	objects map[string][]byte
	err     error
}

func (s *stubImages) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.objects[key] = data
	return "mem://" + key, nil
}

type memoryHistory struct {
	mu       sync.Mutex
	sessions map[string][]Message
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{sessions: map[string][]Message{}}
}

func (m *memoryHistory) Append(_ context.Context, sessionID string, limit int, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := append(m.sessions[sessionID], msgs...)
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	m.sessions[sessionID] = all
	return nil
}

func (m *memoryHistory) List(_ context.Context, sessionID string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sessions[sessionID]...), nil
}

func (m *memoryHistory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
