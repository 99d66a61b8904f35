package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("INFO")
	})

	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)

	SetLevel("WARN")
	Debug("hidden %d", 1)
	Info("hidden too")
	Warn("visible warning")
	Error("visible error")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[WARN] visible warning")
	require.Contains(t, out, "[ERROR] visible error")
}

func TestSetLevelIsCaseInsensitive(t *testing.T) {
	buf := capture(t)

	SetLevel("debug")
	Debug("now visible")

	require.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
