package logger

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogger(level LogLevel) (*StdLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &StdLogger{logger: log.New(&buf, "", 0), level: level}, &buf
}

func TestStdLogger_FieldsSortedAndQuoted(t *testing.T) {
	l, buf := captureLogger(LevelDebug)

	l.Info(context.Background(), "Trade recorded", map[string]interface{}{
		"symbol":  "AAPL",
		"legs":    2,
		"tradeID": "t1",
	})

	assert.Equal(t, "level=INFO msg=\"Trade recorded\" legs=2 symbol=AAPL tradeID=t1\n", buf.String())
}

func TestStdLogger_ErrorIncludesCause(t *testing.T) {
	l, buf := captureLogger(LevelDebug)

	l.Error(context.Background(), errors.New("disk full"), "Write failed")

	assert.Equal(t, "level=ERROR msg=\"Write failed\" error=\"disk full\"\n", buf.String())
}

func TestStdLogger_LevelThreshold(t *testing.T) {
	l, buf := captureLogger(LevelWarn)

	l.Debug(context.Background(), "noise")
	l.Info(context.Background(), "still noise")
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "kept")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}
