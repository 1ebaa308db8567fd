package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/jeevamithra/internal/domain/advisor"
	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/healthtopic"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/quiz"
	"github.com/yanqian/jeevamithra/internal/domain/weather"
)

type classifyRequest struct {
	Text   string `json:"text" validate:"required"`
	Telugu bool   `json:"telugu"`
}

type classifyResponse struct {
	healthtopic.Result
	EmergencyWarning string                 `json:"emergencyWarning,omitempty"`
	Disclaimer       string                 `json:"disclaimer,omitempty"`
	FirstAid         *healthtopic.GuideView `json:"firstAid,omitempty"`
}

// Classify runs the health classifier on free text.
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if !bindJSON(c, &req) {
		return
	}
	result := h.classifier.ClassifyFor(req.Text, req.Telugu)
	resp := classifyResponse{Result: result}
	if result.IsEmergency {
		resp.EmergencyWarning = h.classifier.EmergencyWarning(req.Telugu)
	}
	if result.IsHealthRelated {
		resp.Disclaimer = h.classifier.Disclaimer(req.Telugu)
	}
	if guide, ok := h.classifier.FirstAidGuide(result.FirstAidKey, req.Telugu); ok {
		resp.FirstAid = &guide
	}
	c.JSON(http.StatusOK, resp)
}

type promptRequest struct {
	Mode   string `json:"mode"`
	Text   string `json:"text" validate:"required"`
	Telugu bool   `json:"telugu"`
}

// BuildPrompt returns the instruction the chat would send for a mode.
func (h *Handler) BuildPrompt(c *gin.Context) {
	var req promptRequest
	if !bindJSON(c, &req) {
		return
	}
	mode, _ := prompt.ParseMode(req.Mode)
	text := strings.TrimSpace(chat.Sanitize(req.Text))
	c.JSON(http.StatusOK, gin.H{"mode": mode, "prompt": h.prompts.Build(mode, text, req.Telugu)})
}

// Weather returns the advisory for a location.
func (h *Handler) Weather(c *gin.Context) {
	var req weather.Request
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.weatherSvc.Forecast(c.Request.Context(), req))
}

// News returns the latest stored agriculture news.
func (h *Handler) News(c *gin.Context) {
	c.JSON(http.StatusOK, h.newsSvc.Latest(c.Request.Context(), teluguQuery(c)))
}

// RefreshNews fetches a fresh snapshot.
func (h *Handler) RefreshNews(c *gin.Context) {
	c.JSON(http.StatusOK, h.newsSvc.Refresh(c.Request.Context(), teluguQuery(c)))
}

// GenerateQuiz builds a multiple-choice quiz.
func (h *Handler) GenerateQuiz(c *gin.Context) {
	var req quiz.Request
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.quizSvc.Generate(c.Request.Context(), req))
}

type scoreRequest struct {
	Questions []quiz.Question `json:"questions" validate:"required,min=1"`
}

// ScoreQuiz grades answered questions.
func (h *Handler) ScoreQuiz(c *gin.Context) {
	var req scoreRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, quiz.Score(req.Questions))
}

// WorkoutPlan answers the fitness form.
func (h *Handler) WorkoutPlan(c *gin.Context) {
	var req advisor.WorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.advisorSvc.WorkoutPlan(c.Request.Context(), req))
}

// Nutrition answers the food form.
func (h *Handler) Nutrition(c *gin.Context) {
	var req advisor.NutritionRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.advisorSvc.Nutrition(c.Request.Context(), req))
}

// Scholarships answers the scholarship finder.
func (h *Handler) Scholarships(c *gin.Context) {
	var req advisor.ScholarshipRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.advisorSvc.Scholarships(c.Request.Context(), req))
}

// CareerGuidance returns career options after 10th grade.
func (h *Handler) CareerGuidance(c *gin.Context) {
	c.JSON(http.StatusOK, h.advisorSvc.CareerGuidance(c.Request.Context(), teluguQuery(c)))
}

// ProductivityTips returns study tips.
func (h *Handler) ProductivityTips(c *gin.Context) {
	c.JSON(http.StatusOK, h.advisorSvc.ProductivityTips(c.Request.Context(), teluguQuery(c)))
}
