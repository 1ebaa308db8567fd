package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/jeevamithra/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Chat.MaxImageBytes) + 1<<20
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		metricsMiddleware(),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
	{
		api.POST("/chat/messages", handler.SendMessage)
		api.GET("/chat/sessions/:id/messages", handler.ChatHistory)
		api.DELETE("/chat/sessions/:id", handler.ResetChat)

		api.POST("/classify", handler.Classify)
		api.POST("/prompts", handler.BuildPrompt)
		api.GET("/health/first-aid", handler.FirstAidGuides)
		api.GET("/health/first-aid/:key", handler.FirstAidGuide)
		api.GET("/health/tips", handler.HealthTips)

		api.POST("/weather", handler.Weather)
		api.GET("/news", handler.News)
		api.POST("/news/refresh", handler.RefreshNews)

		api.POST("/quizzes", handler.GenerateQuiz)
		api.POST("/quizzes/score", handler.ScoreQuiz)

		api.POST("/advisor/workout", handler.WorkoutPlan)
		api.POST("/advisor/nutrition", handler.Nutrition)
		api.POST("/advisor/scholarships", handler.Scholarships)
		api.GET("/advisor/career", handler.CareerGuidance)
		api.GET("/advisor/productivity", handler.ProductivityTips)

		api.POST("/speech/sessions", handler.OpenSpeechSession)
		api.DELETE("/speech/sessions/:id", handler.CloseSpeechSession)
		api.POST("/speech/sessions/:id/synthesize", handler.Synthesize)
		api.POST("/speech/sessions/:id/stop", handler.StopSpeech)
		api.POST("/speech/transcribe", handler.Transcribe)

		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)
		api.GET("/auth/google/login", handler.GoogleLogin)
		api.GET("/auth/google/callback", handler.GoogleCallback)

		api.GET("/rentals", handler.ListMachines)
		api.GET("/rentals/:id", handler.GetMachine)
	}

	protected := api.Group("")
	protected.Use(requireUser(handler.authSvc))
	{
		protected.GET("/auth/me", handler.Me)
		protected.PUT("/auth/me", handler.UpdateMe)
		protected.POST("/auth/logout", handler.Logout)
		protected.POST("/rentals/:id/bookings", handler.BookMachine)
		protected.GET("/rentals/bookings", handler.MyBookings)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
