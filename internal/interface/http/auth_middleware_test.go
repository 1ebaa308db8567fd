package http

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def", token: "abc.def", ok: true},
		{header: "  bearer   abc  ", token: "abc", ok: true},
		{header: "Basic dXNlcg==", ok: false},
		{header: "Bearer ", ok: false},
		{header: "abc", ok: false},
		{header: "", ok: false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		require.Equal(t, tc.ok, ok, tc.header)
		require.Equal(t, tc.token, token, tc.header)
	}
}
