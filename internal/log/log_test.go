package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAndLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	Config(LevelWarn, FormatJSON, buf)
	defer Config(LevelInfo, FormatText, io.Discard)

	ctx := context.Background()
	Info(ctx, "should not appear")
	require.Empty(t, buf.String())

	Warn(ctx, "should appear", "key", "value")
	out := buf.String()
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "key")
	assert.True(t, strings.Contains(out, "\"level\":\"WARN\""))
}

func TestErrorIncludesKV(t *testing.T) {
	buf := &bytes.Buffer{}
	Config(LevelDebug, FormatJSON, buf)

	Error(context.Background(), "boom", "err", assert.AnError)
	assert.Contains(t, buf.String(), assert.AnError.Error())
}
