package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// FirstAidGuides lists the first-aid center.
func (h *Handler) FirstAidGuides(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"guides": h.classifier.FirstAidGuides(teluguQuery(c))})
}

// FirstAidGuide returns one guide by key.
func (h *Handler) FirstAidGuide(c *gin.Context) {
	guide, ok := h.classifier.FirstAidGuide(c.Param("key"), teluguQuery(c))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "no first aid guide for "+c.Param("key"), nil))
		return
	}
	c.JSON(http.StatusOK, guide)
}

// HealthTips returns every daily tip plus the one picked for today.
func (h *Handler) HealthTips(c *gin.Context) {
	telugu := teluguQuery(c)
	resp := gin.H{"tips": h.classifier.DailyTips(telugu)}
	if today, ok := h.classifier.TipOfTheDay(time.Now(), telugu); ok {
		resp["today"] = today
	}
	c.JSON(http.StatusOK, resp)
}
