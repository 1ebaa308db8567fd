package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	signInCookie = "jm_google_signin"
	signInTTL    = 5 * time.Minute
)

// googleSignIn carries one Google sign-in from /auth/google/login to the
// callback in a short-lived HttpOnly cookie. Next is the app page to land on
// afterwards.
type googleSignIn struct {
	State    string `json:"s"`
	Verifier string `json:"v"`
	Next     string `json:"n,omitempty"`
}

func rememberSignIn(c *gin.Context, in googleSignIn) {
	raw, _ := json.Marshal(in)
	writeSignInCookie(c, base64.RawURLEncoding.EncodeToString(raw), int(signInTTL.Seconds()))
}

// recallSignIn reads the pending sign-in and clears the cookie, so a state
// value is only ever accepted once.
func recallSignIn(c *gin.Context) (googleSignIn, bool) {
	value, err := c.Cookie(signInCookie)
	writeSignInCookie(c, "", -1)
	if err != nil {
		return googleSignIn{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return googleSignIn{}, false
	}
	var in googleSignIn
	if json.Unmarshal(raw, &in) != nil || in.State == "" || in.Verifier == "" {
		return googleSignIn{}, false
	}
	in.Next = safeNext(in.Next)
	return in, true
}

func writeSignInCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(signInCookie, value, maxAge, "/", "", c.Request.TLS != nil, true)
}

// safeNext keeps only app-relative paths so the callback cannot be turned
// into an open redirect.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	return next
}
