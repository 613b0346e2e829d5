package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		" Info ": zapcore.InfoLevel,
		"warn":   zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers ensures the context logger carries names and fields.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "registry")
	ctx = WithKV(ctx, "caller", "root")

	InfoKV(ctx, "Account added", "target", "alice")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "registry", entries[0].LoggerName)
	require.Equal(t, "root", entries[0].ContextMap()["caller"])
	require.Equal(t, "alice", entries[0].ContextMap()["target"])

	require.Same(t, global, FromContext(context.Background()))
}

// TestConfigure_RejectsUnknownLevel ensures an unknown level leaves the logger untouched.
func TestConfigure_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	before := defaultLevel.Level()

	require.Error(t, Configure("verbose"))
	require.Equal(t, before, defaultLevel.Level())
}
