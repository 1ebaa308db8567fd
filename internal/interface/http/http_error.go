package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
)

// HTTPError is the single error shape the API renders:
// {"error": {"code", "message", "fields"}}.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	// Fields maps JSON field names to what is wrong with them.
	Fields map[string]string
	Err    error
}

func (e *HTTPError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *HTTPError) Unwrap() error { return e.Err }

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// badRequest reports a body that failed to decode or validate, naming the
// offending fields when they are known.
func badRequest(err error) *HTTPError {
	httpErr := NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid request body", err)
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		httpErr.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			httpErr.Fields[fe.Field()] = fe.Tag()
		}
		httpErr.Message = "some fields are missing or invalid"
	case errors.As(err, &typeErr) && typeErr.Field != "":
		httpErr.Fields = map[string]string{typeErr.Field: "must be " + typeErr.Type.String()}
		httpErr.Message = "some fields have the wrong type"
	case err != nil:
		httpErr.Message = err.Error()
	}
	return httpErr
}

// statusForCode maps domain error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case "invalid_input":
		return http.StatusBadRequest
	case "invalid_credentials", "invalid_token":
		return http.StatusUnauthorized
	case "not_found", "user_not_found":
		return http.StatusNotFound
	case "email_exists", "account_linking_disabled":
		return http.StatusConflict
	case "no_speech":
		return http.StatusUnprocessableEntity
	case "llm_error", "speech_error", "oauth_exchange_failed":
		return http.StatusBadGateway
	case "auth_not_configured":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fromAppError keeps a domain error's code and message. Errors without a
// code are hidden behind a generic 500.
func fromAppError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	code := apperrors.Code(err)
	if code == "" {
		return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
	}
	return NewHTTPError(statusForCode(code), code, apperrors.Message(err), err)
}

func abortWithAppError(c *gin.Context, err error) {
	abortWithError(c, fromAppError(err))
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
