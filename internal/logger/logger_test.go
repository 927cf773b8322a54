package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext_Fallback ensures the global logger is returned for contexts without one.
func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestToContext_Roundtrip verifies that a logger stored in a context is returned as-is.
func TestToContext_Roundtrip(t *testing.T) {
	t.Parallel()

	l := New(zapcore.ErrorLevel)
	ctx := ToContext(context.Background(), l)

	require.Same(t, l, FromContext(ctx))

	// Named loggers derive from the stored one, not the global.
	named := FromContext(WithName(ctx, "fetch"))
	require.NotSame(t, Logger(), named)
}
