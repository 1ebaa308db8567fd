package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/jeevamithra/internal/domain/auth"
	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
)

const userClaimsKey = "jeevamithra.user"

// requireUser admits requests carrying a valid access token and stores its
// claims for signedInUser.
func requireUser(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "sign in to continue", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		switch {
		case apperrors.IsCode(err, "invalid_token"):
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "invalid_token", apperrors.Message(err), err))
			return
		case err != nil:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", "could not check sign-in", err))
			return
		}
		c.Set(userClaimsKey, claims)
		c.Next()
	}
}

// signedInUser returns the caller's claims, aborting with 401 when the route
// is not behind requireUser.
func signedInUser(c *gin.Context) (auth.Claims, bool) {
	if claims, ok := c.Value(userClaimsKey).(auth.Claims); ok {
		return claims, true
	}
	abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "sign in to continue", nil))
	return auth.Claims{}, false
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
