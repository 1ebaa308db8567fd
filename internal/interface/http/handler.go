package http

import (
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yanqian/jeevamithra/internal/domain/advisor"
	"github.com/yanqian/jeevamithra/internal/domain/auth"
	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/news"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/quiz"
	"github.com/yanqian/jeevamithra/internal/domain/rentals"
	"github.com/yanqian/jeevamithra/internal/domain/speech"
	"github.com/yanqian/jeevamithra/internal/domain/weather"
	"github.com/yanqian/jeevamithra/internal/infra/config"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Services groups the domain services served over HTTP.
type Services struct {
	Chat    chat.Service
	Weather weather.Service
	News    news.Service
	Quiz    quiz.Service
	Advisor advisor.Service
	Speech  speech.Service
	Auth    auth.Service
	Rentals rentals.Service
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	chatSvc    chat.Service
	weatherSvc weather.Service
	newsSvc    news.Service
	quizSvc    quiz.Service
	advisorSvc advisor.Service
	speechSvc  speech.Service
	authSvc    auth.Service
	rentalSvc  rentals.Service
	classifier *healthtopic.Classifier
	prompts    *prompt.Library

	postLoginRedirect string
	logger            *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, svcs Services, classifier *healthtopic.Classifier, prompts *prompt.Library, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc:           svcs.Chat,
		weatherSvc:        svcs.Weather,
		newsSvc:           svcs.News,
		quizSvc:           svcs.Quiz,
		advisorSvc:        svcs.Advisor,
		speechSvc:         svcs.Speech,
		authSvc:           svcs.Auth,
		rentalSvc:         svcs.Rentals,
		classifier:        classifier,
		prompts:           prompts,
		postLoginRedirect: cfg.Auth.Google.PostLoginRedirectURL,
		logger:            logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindJSON decodes and validates the body, aborting with 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, badRequest(err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		abortWithError(c, badRequest(err))
		return false
	}
	return true
}

func teluguQuery(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("telugu"))
	return v
}
