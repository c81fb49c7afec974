package logger

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNew_FileOutputAndTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	extra, recorded := observer.New(zapcore.InfoLevel)

	l, err := New(&Config{Level: "info", Format: "json", Output: path}, extra)
	require.NoError(t, err)

	l.Info("sync finished", zap.String("job", "ltk_sync"))
	require.NoError(t, Sync(l))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"sync finished"`)
	assert.Equal(t, 1, recorded.Len())
}

func TestEnrich(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithContext(context.Background(), base)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithJob(ctx, "shopmy_sync")
	ctx = WithCreatorID(ctx, "nicki_entenmann")

	L(ctx).Info("creator done")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "shopmy_sync", fields["job"])
	assert.Equal(t, "nicki_entenmann", fields["creator_id"])
	assert.NotContains(t, fields, "user_id")
	assert.NotContains(t, fields, "trace_id")
}

func TestFromContext_Default(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))
}

type syncErrWriter struct{ err error }

func (w syncErrWriter) Write(p []byte) (int, error) { return len(p), nil }
func (w syncErrWriter) Sync() error                 { return w.err }

func TestSync(t *testing.T) {
	newLogger := func(err error) *zap.Logger {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		return zap.New(zapcore.NewCore(enc, syncErrWriter{err: err}, zapcore.InfoLevel))
	}

	t.Run("terminal errors ignored", func(t *testing.T) {
		assert.NoError(t, Sync(newLogger(&os.PathError{Op: "sync", Path: "/dev/stdout", Err: syscall.EINVAL})))
		assert.NoError(t, Sync(newLogger(syscall.ENOTTY)))
	})

	t.Run("other errors returned", func(t *testing.T) {
		assert.ErrorIs(t, Sync(newLogger(syscall.EIO)), syscall.EIO)
	})
}
