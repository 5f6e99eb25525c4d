package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tcs := map[string]string{
		"john@example.com": "jo***@example.com",
		"a@x.com":          "***@x.com",
		"not-an-email":     "***",
		"@x.com":           "***",
		"user@":            "***",
		"we@ird@x.com":     "we***@x.com",
	}

	for in, want := range tcs {
		require.Equal(t, want, Email(in), in)
	}
}

func TestToken(t *testing.T) {
	require.Equal(t, "[REDACTED_TOKEN]", Token("short"))
	require.Equal(t, "[REDACTED_TOKEN]", Token("12345678"))
	require.Equal(t, "abcd...[REDACTED_TOKEN]", Token("abcdefghijkl"))
}
