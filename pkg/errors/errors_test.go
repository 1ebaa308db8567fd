package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndInspect(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("weather: %w", Wrap("llm_error", "generation failed", cause))

	require.True(t, IsCode(err, "llm_error"))
	require.False(t, IsCode(err, "invalid_input"))
	require.Equal(t, "llm_error", Code(err))
	require.Equal(t, "generation failed", Message(err))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "dial tcp: timeout")
}

func TestCodeOfPlainError(t *testing.T) {
	require.Equal(t, "", Code(errors.New("plain")))
	require.Equal(t, "plain", Message(errors.New("plain")))
	require.Equal(t, "", Message(nil))
}
