package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/jeevamithra/internal/domain/advisor"
	"github.com/yanqian/jeevamithra/internal/domain/auth"
	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/news"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/quiz"
	"github.com/yanqian/jeevamithra/internal/domain/rentals"
	"github.com/yanqian/jeevamithra/internal/domain/speech"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/internal/domain/weather"
	"github.com/yanqian/jeevamithra/internal/infra/blobstore"
	"github.com/yanqian/jeevamithra/internal/infra/config"
	"github.com/yanqian/jeevamithra/internal/infra/kvstore"
	"github.com/yanqian/jeevamithra/internal/infra/rentalrepo"
	"github.com/yanqian/jeevamithra/internal/infra/userrepo"
)

func TestRouter_Health(t *testing.T) {
	env := newRouterUnderTest(t)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_ClassifyEmergency(t *testing.T) {
	env := newRouterUnderTest(t)
	rec := env.do(http.MethodPost, "/api/v1/classify", `{"text":"I have chest pain"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, true, got["isEmergency"])
	require.NotEmpty(t, got["emergencyWarning"])
	require.NotEmpty(t, got["disclaimer"])
	require.Equal(t, "heart_attack", got["firstAidKey"])
	guide, ok := got["firstAid"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Heart Attack", guide["title"])
}

func TestRouter_FirstAidCenter(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodGet, "/api/v1/health/first-aid", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Guides []healthtopic.GuideView `json:"guides"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Guides, 20)
	require.Equal(t, "snake_bite", list.Guides[0].Key)

	rec = env.do(http.MethodGet, "/api/v1/health/first-aid/heat_stroke?telugu=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var guide healthtopic.GuideView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guide))
	require.Equal(t, "వడదెబ్బ", guide.Title)
	require.Len(t, guide.Steps, 4)

	rec = env.do(http.MethodGet, "/api/v1/health/first-aid/sunburn", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_HealthTips(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodGet, "/api/v1/health/tips", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Tips  []healthtopic.TipView `json:"tips"`
		Today healthtopic.TipView   `json:"today"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Tips, 15)
	require.Contains(t, got.Tips, got.Today)
}

func TestRouter_ClassifyInvalidJSON(t *testing.T) {
	env := newRouterUnderTest(t)
	rec := env.do(http.MethodPost, "/api/v1/classify", `{"text":123}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
	require.Equal(t, map[string]any{"text": "must be string"}, errBody["error"]["fields"])
}

func TestRouter_PromptUnknownModeFallsBackToGeneral(t *testing.T) {
	env := newRouterUnderTest(t)
	rec := env.do(http.MethodPost, "/api/v1/prompts", `{"mode":"astrology","text":"hello"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "general", got["mode"])
	require.Equal(t, "Please respond in English. User message: hello", got["prompt"])
}

func TestRouter_ChatRoundTrip(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"sessionId":"s1","text":"Which fertilizer for paddy?","mode":"farming"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sent chat.SendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	require.Equal(t, "s1", sent.SessionID)
	require.Equal(t, "Take rest.", sent.Reply.Content)

	rec = env.do(http.MethodGet, "/api/v1/chat/sessions/s1/messages", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Messages []chat.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Messages, 2)

	rec = env.do(http.MethodDelete, "/api/v1/chat/sessions/s1?telugu=false", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Chat cleared")
}

func TestRouter_ChatErrors(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"text":"  "}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_input", errBody["error"]["code"])
	require.Equal(t, "Please type a message or attach an image.", errBody["error"]["message"])

	env.gen.err = errors.New("upstream down")
	rec = env.do(http.MethodPost, "/api/v1/chat/messages", `{"text":"hello"}`, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	errBody = decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "llm_error", errBody["error"]["code"])
	require.NotContains(t, errBody["error"]["message"], "upstream down")
}

func TestRouter_WeatherFallsBackWhenModelFails(t *testing.T) {
	env := newRouterUnderTest(t)
	env.gen.err = errors.New("timeout")

	rec := env.do(http.MethodPost, "/api/v1/weather", `{"location":""}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap weather.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.True(t, snap.Fallback)
	require.Equal(t, "Hyderabad, India", snap.Location)
	require.Len(t, snap.FiveDayForecast, 5)
}

func TestRouter_QuizSampleAndScore(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodPost, "/api/v1/quizzes", `{"grade":"10"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var q quiz.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	require.Equal(t, quiz.SourceSample, q.Source)

	for i := range q.Questions {
		answer := q.Questions[i].CorrectOptionIndex
		q.Questions[i].UserAnswer = &answer
	}
	payload, err := json.Marshal(map[string]any{"questions": q.Questions})
	require.NoError(t, err)
	rec = env.do(http.MethodPost, "/api/v1/quizzes/score", string(payload), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var result quiz.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, len(q.Questions), result.Score)
	require.True(t, result.Passed)

	rec = env.do(http.MethodPost, "/api/v1/quizzes", `{"count":99}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdvisorValidation(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodPost, "/api/v1/advisor/nutrition", `{"foodItem":"Ragi","quantity":""}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, map[string]any{"quantity": "required"}, decodeErrorBody(t, rec.Body.Bytes())["error"]["fields"])

	rec = env.do(http.MethodGet, "/api/v1/advisor/career?telugu=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var advice advisor.Advice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advice))
	require.Equal(t, advisor.TopicCareer, advice.Topic)
}

func TestRouter_SpeechSessionFlow(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodPost, "/api/v1/speech/sessions", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var opened map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	id := opened["sessionId"].(string)

	rec = env.do(http.MethodPost, "/api/v1/speech/sessions/"+id+"/synthesize?format=mp3", `{"text":"**Namaste** 🌾"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, speech.AudioMIMEType, rec.Header().Get("Content-Type"))
	require.Equal(t, "false", rec.Header().Get("X-Speech-Cached"))
	require.Equal(t, "mp3:Namaste", rec.Body.String())

	rec = env.do(http.MethodPost, "/api/v1/speech/sessions/"+id+"/stop", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"stopped":true}`, rec.Body.String())

	rec = env.do(http.MethodDelete, "/api/v1/speech/sessions/"+id, "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/speech/sessions/"+id+"/synthesize", `{"text":"hi"}`, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_TranscribeWithoutRecognizer(t *testing.T) {
	env := newRouterUnderTest(t)
	rec := env.do(http.MethodPost, "/api/v1/speech/transcribe", `{"audio":"AAEC"}`, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "speech_error", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_AuthAndBooking(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodGet, "/api/v1/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/register", `{"email":"ravi@example.com","password":"secret1","fullName":"Ravi","phone":"9000000000","age":34,"gender":"male"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = env.do(http.MethodPost, "/api/v1/auth/register", `{"email":"ravi@example.com","password":"secret1","fullName":"Ravi","phone":"9000000000","age":34,"gender":"male"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"fullName":"Ravi"`)
	require.Contains(t, rec.Body.String(), `"profileComplete":true`)

	rec = env.do(http.MethodGet, "/api/v1/auth/me", "", login.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = env.do(http.MethodPut, "/api/v1/auth/me", `{"phone":"9111111111"}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "9111111111")

	rec = env.do(http.MethodPost, "/api/v1/rentals/1/bookings", `{"startDate":"2025-06-21","days":3}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/rentals/1/bookings", `{"startDate":"2025-06-21","days":3}`, login.Token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking rentals.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	require.Equal(t, 4500, booking.TotalPrice)

	rec = env.do(http.MethodGet, "/api/v1/rentals/bookings", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), booking.ID)

	rec = env.do(http.MethodPost, "/api/v1/rentals/404/bookings", `{"startDate":"2025-06-21","days":3}`, login.Token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_GoogleSignInGuards(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodGet, "/api/v1/auth/google/login?next=/rentals", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "auth_not_configured", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = env.do(http.MethodGet, "/api/v1/auth/google/callback?state=forged&code=abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "oauth state mismatch", decodeErrorBody(t, rec.Body.Bytes())["error"]["message"])
}

func TestRouter_RentalsFilter(t *testing.T) {
	env := newRouterUnderTest(t)

	rec := env.do(http.MethodGet, "/api/v1/rentals?priceRange=2000%2B", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Machines []rentals.Machine `json:"machines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Machines, 1)
	require.Equal(t, "John Deere Harvester", list.Machines[0].Name)

	rec = env.do(http.MethodGet, "/api/v1/rentals?priceRange=cheap", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MetricsExposed(t *testing.T) {
	env := newRouterUnderTest(t)
	env.do(http.MethodGet, "/healthz", "", "")

	rec := env.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "jeevamithra_http_requests_total")
}

type routerEnv struct {
	server *http.Server
	gen    *stubGenerator
}

func (e routerEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T) routerEnv {
	t.Helper()
	logger := newTestLogger()
	gen := &stubGenerator{text: "Take rest."}
	prompts := prompt.Default()
	classifier := healthtopic.Default()
	store := kvstore.NewMemoryStore(kvstore.Options{})

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Chat: config.ChatConfig{MaxImageBytes: 1 << 20},
	}
	svcs := Services{
		Chat:    chat.NewService(chat.Config{}, classifier, prompts, gen, store, blobstore.NewMemoryStorage(), logger),
		Weather: weather.NewService(weather.Config{DefaultLocation: "Hyderabad, India"}, gen, prompts, logger),
		News:    news.NewService(news.Config{}, gen, prompts, store, logger),
		Quiz:    quiz.NewService(quiz.Config{}, gen, prompts, logger),
		Advisor: advisor.NewService(advisor.Config{}, gen, prompts, logger),
		Speech:  speech.NewService(speech.Config{}, stubSynthesizer{}, nil, store, logger),
		Auth:    auth.NewService(auth.Config{Secret: "test-secret", TokenTTL: time.Hour, RefreshTokenTTL: 24 * time.Hour}, userrepo.NewMemoryRepository(), logger),
		Rentals: rentals.NewService(rentalrepo.NewMemoryRepository(rentals.DefaultCatalog()), logger),
	}
	handler := NewHandler(cfg, svcs, classifier, prompts, logger)
	return routerEnv{server: NewRouter(cfg, handler), gen: gen}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(_ context.Context, _ textgen.Request) (textgen.Response, error) {
	if s.err != nil {
		return textgen.Response{}, s.err
	}
	return textgen.Response{Text: s.text}, nil
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(_ context.Context, text string, _ speech.Voice) ([]byte, error) {
	return []byte("mp3:" + strings.TrimSpace(text)), nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]any {
	t.Helper()
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
