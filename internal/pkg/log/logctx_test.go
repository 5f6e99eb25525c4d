package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom_DefaultWhenAbsent(t *testing.T) {
	require.Same(t, slog.Default(), From(context.Background()))
}

func TestIntoFrom_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := Into(context.Background(), l)
	require.Same(t, l, From(ctx))

	Op(ctx, "service.auth.Signup").Info("probe")
	require.Contains(t, buf.String(), "op=service.auth.Signup")
	require.Contains(t, buf.String(), "msg=probe")
}
