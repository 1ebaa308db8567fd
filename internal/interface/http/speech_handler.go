package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/jeevamithra/internal/domain/speech"
)

// OpenSpeechSession starts a playback session.
func (h *Handler) OpenSpeechSession(c *gin.Context) {
	sess := h.speechSvc.OpenSession(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"sessionId": sess.ID, "createdAt": sess.CreatedAt})
}

// CloseSpeechSession drops a session and its cached clips.
func (h *Handler) CloseSpeechSession(c *gin.Context) {
	if err := h.speechSvc.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		abortWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Synthesize speaks text within a session. With ?format=mp3 the raw audio
// is returned instead of the JSON clip.
func (h *Handler) Synthesize(c *gin.Context) {
	var req speech.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	clip, err := h.speechSvc.Synthesize(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	if c.Query("format") == "mp3" {
		c.Header("X-Speech-Cached", boolString(clip.Cached))
		c.Data(http.StatusOK, clip.MIMEType, clip.Audio)
		return
	}
	c.JSON(http.StatusOK, clip)
}

// StopSpeech clears the session's current clip.
func (h *Handler) StopSpeech(c *gin.Context) {
	stopped, err := h.speechSvc.Stop(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stopped": stopped})
}

// Transcribe turns base64 audio into text.
func (h *Handler) Transcribe(c *gin.Context) {
	var req speech.TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	out, err := h.speechSvc.Transcribe(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
