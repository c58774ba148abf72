package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func withWriter(t *testing.T) *safeBuffer {
	t.Helper()
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })
	var buf safeBuffer
	InitWriter(&buf)
	return &buf
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel("info"))
	require.Equal(t, LevelWarn, ParseLevel("WARN"))
	require.Equal(t, LevelError, ParseLevel("Error"))
	require.Equal(t, LevelDebug, ParseLevel("1"))
	require.Equal(t, LevelDebug, ParseLevel(""))
}

func TestFormatEntry(t *testing.T) {
	at := time.Date(2026, 1, 2, 10, 45, 0, 0, time.UTC)

	got := formatEntry(at, LevelError, CatNav, "boom", []any{"a", 1, "b"})

	require.Equal(t, "2026-01-02T10:45:00 [ERROR] [nav] boom a=1 b=<missing>\n", got)
}

func TestLog_Format(t *testing.T) {
	buf := withWriter(t)

	Info(CatNav, "Hop", "instance", "foo", "to", 17)

	out := buf.String()
	require.Contains(t, out, "[INFO] [nav] Hop instance=foo to=17\n")
}

func TestLog_OddFields(t *testing.T) {
	buf := withWriter(t)

	Warn(CatStore, "odd", "key")

	require.Contains(t, buf.String(), "key=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	buf := withWriter(t)

	ErrorErr(CatConfig, "save failed", errors.New("disk full"), "path", "/tmp/x")
	ErrorErr(CatConfig, "nil error", nil)

	out := buf.String()
	require.Contains(t, out, "[ERROR] [config] save failed path=/tmp/x error=disk full")
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	buf := withWriter(t)

	SetMinLevel(LevelWarn)
	Debug(CatCache, "hidden")
	Error(CatCache, "shown")
	SetEnabled(false)
	Error(CatCache, "muted")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.NotContains(t, out, "muted")
}

func TestLog_NoLogger(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })
	defaultLogger = nil

	Debug(CatUI, "dropped")
	SetEnabled(true)
	require.Nil(t, Subscribe(context.Background()))
}

func TestSubscribe(t *testing.T) {
	withWriter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Subscribe(ctx)
	require.NotNil(t, ch)
	Info(CatSession, "hello")

	select {
	case ev := <-ch:
		require.True(t, strings.HasSuffix(ev.Payload, "[INFO] [session] hello\n"), ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("no log entry delivered")
	}
}

func TestInit_WritesFile(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatRegistry, "added", "name", "todo")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[registry] added name=todo")
}
