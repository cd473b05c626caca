package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(old) })
	return &buf
}

// TestFormatValue 测试值格式化
func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"字符串", "test", "test"},
		{"错误", errors.New("error message"), "error message"},
		{"整数", 123, "123"},
		{"布尔值", true, "true"},
		{"时长", 150 * time.Millisecond, "150ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

// TestStdLogger_Levels 测试各级别输出标签与字段
func TestStdLogger_Levels(t *testing.T) {
	buf := captureStdLog(t)
	logger := NewStdLogger("itemhub")
	ctx := context.Background()

	logger.Debug(ctx, "debug message", String("key", "value"))
	logger.Info(ctx, "info message", Int("count", 123))
	logger.Warn(ctx, "warn message", Bool("critical", true))
	logger.Error(ctx, "error message", Error(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{
		"[DEBUG] itemhub debug message key=value",
		"[INFO] itemhub info message count=123",
		"[WARN] itemhub warn message critical=true",
		"[ERROR] itemhub error message error=boom",
	} {
		assert.Contains(t, out, want)
	}
}

func TestStdLogger_WithLevelFilters(t *testing.T) {
	buf := captureStdLog(t)
	logger := NewStdLogger("").WithLevel(WarnLevel)
	ctx := context.Background()

	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

// TestStdLogger_WithFields_Immutable 测试WithFields不改变原Logger
func TestStdLogger_WithFields_Immutable(t *testing.T) {
	buf := captureStdLog(t)
	logger := NewStdLogger("test")
	child := logger.WithFields(String("component", "processing"))

	child.Info(context.Background(), "run finished", Int("processed", 3))
	logger.Info(context.Background(), "plain")

	assert.Len(t, logger.fields, 0)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "component=processing processed=3")
	assert.NotContains(t, lines[1], "component=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

// TestGlobalLogger 测试全局Logger
func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	noop := NewNoopLogger()
	SetLogger(noop)
	assert.Same(t, noop, GetLogger())

	SetLogger(nil)
	assert.Same(t, noop, GetLogger(), "nil 不应覆盖全局 Logger")

	assert.Same(t, noop, ComponentLogger("store"))
}

func TestZerologLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, DebugLevel, false).
		WithFields(String("component", "processing"))

	logger.Info(context.Background(), "bulk run finished",
		Int("processed", 3),
		Int64("run_ms", 12),
		Error(errors.New("partial")),
		Any("ids", []int64{1, 2}),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "bulk run finished", entry["message"])
	assert.Equal(t, "processing", entry["component"])
	assert.Equal(t, float64(3), entry["processed"])
	assert.Equal(t, "partial", entry["error"])
	assert.Equal(t, []any{float64(1), float64(2)}, entry["ids"])
}

func TestZerologLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, ErrorLevel, false)

	logger.Warn(context.Background(), "dropped")
	assert.Zero(t, buf.Len())

	logger.Error(context.Background(), "kept")
	assert.Contains(t, buf.String(), "kept")
}

// TestLoggerInterface 测试Logger接口实现
func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*StdLogger)(nil)
	var _ Logger = (*NoopLogger)(nil)
	var _ Logger = (*ZerologLogger)(nil)

	old := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(old)

	ctx := context.Background()
	for _, logger := range []Logger{NewStdLogger("t"), NewNoopLogger(), NewZerologLogger(io.Discard, DebugLevel, true)} {
		logger.Debug(ctx, "test")
		logger.Info(ctx, "test")
		logger.Warn(ctx, "test")
		logger.Error(ctx, "test")
		_ = logger.WithFields(String("k", "v"))
	}
}
