package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/jeevamithra/internal/domain/auth"
)

// Register creates an account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with email and password.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GoogleLogin redirects to Google with a PKCE challenge. An optional
// ?next=/path is handed back to the app after sign-in.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state, verifier, challenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_error", "failed to start google sign-in", err))
		return
	}
	target, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	rememberSignIn(c, googleSignIn{State: state, Verifier: verifier, Next: safeNext(c.Query("next"))})
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback completes Google sign-in. When a post-login redirect is
// configured the tokens, the profile status and the next page travel in the
// URL fragment.
func (h *Handler) GoogleCallback(c *gin.Context) {
	saved, ok := recallSignIn(c)
	if !ok || saved.State != c.Query("state") {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "oauth state mismatch", nil))
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "invalid_credentials", "google sign-in was cancelled", nil))
		return
	}
	resp, err := h.authSvc.GoogleCallback(c.Request.Context(), c.Query("code"), saved.Verifier)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	if h.postLoginRedirect != "" {
		fragment := url.Values{}
		fragment.Set("token", resp.Token)
		fragment.Set("refreshToken", resp.RefreshToken)
		fragment.Set("profileComplete", strconv.FormatBool(resp.User.ProfileComplete))
		if saved.Next != "" {
			fragment.Set("next", saved.Next)
		}
		c.Redirect(http.StatusFound, h.postLoginRedirect+"#"+fragment.Encode())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the signed-in profile.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := signedInUser(c)
	if !ok {
		return
	}
	view, err := h.authSvc.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateMe changes profile fields.
func (h *Handler) UpdateMe(c *gin.Context) {
	claims, ok := signedInUser(c)
	if !ok {
		return
	}
	var update auth.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	view, err := h.authSvc.UpdateProfile(c.Request.Context(), claims.UserID, update)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Logout revokes any stored Google grant. Access tokens expire on their own.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := signedInUser(c)
	if !ok {
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), claims.UserID); err != nil {
		abortWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
