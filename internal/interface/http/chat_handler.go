package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/jeevamithra/internal/domain/chat"
)

type chatImagePayload struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type chatMessageRequest struct {
	SessionID string            `json:"sessionId"`
	Text      string            `json:"text"`
	Mode      string            `json:"mode"`
	Telugu    bool              `json:"telugu"`
	Image     *chatImagePayload `json:"image"`
}

// SendMessage accepts either JSON (image as base64) or a multipart form
// with an "image" file part.
func (h *Handler) SendMessage(c *gin.Context) {
	var req chat.SendRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		parsed, ok := h.chatRequestFromForm(c)
		if !ok {
			return
		}
		req = parsed
	} else {
		var body chatMessageRequest
		if !bindJSON(c, &body) {
			return
		}
		req = chat.SendRequest{SessionID: body.SessionID, Text: body.Text, Mode: body.Mode, Telugu: body.Telugu}
		if body.Image != nil {
			req.Image = &chat.ImageUpload{MIMEType: body.Image.MIMEType, Data: body.Image.Data}
		}
	}

	resp, err := h.chatSvc.Send(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) chatRequestFromForm(c *gin.Context) (chat.SendRequest, bool) {
	telugu, _ := strconv.ParseBool(c.PostForm("telugu"))
	req := chat.SendRequest{
		SessionID: c.PostForm("sessionId"),
		Text:      c.PostForm("text"),
		Mode:      c.PostForm("mode"),
		Telugu:    telugu,
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return req, true
		}
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return req, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return req, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err))
		return req, false
	}
	req.Image = &chat.ImageUpload{MIMEType: fileHeader.Header.Get("Content-Type"), Data: data}
	return req, true
}

// ChatHistory returns a session transcript.
func (h *Handler) ChatHistory(c *gin.Context) {
	sessionID := c.Param("id")
	msgs, err := h.chatSvc.History(c.Request.Context(), sessionID)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "messages": msgs})
}

// ResetChat clears a transcript and returns the greeting.
func (h *Handler) ResetChat(c *gin.Context) {
	msg, err := h.chatSvc.Reset(c.Request.Context(), c.Param("id"), teluguQuery(c))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
