package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default is info", opts: Options{}, wantInfo: true},
		{name: "debug", opts: Options{Level: "debug"}, wantDebug: true, wantInfo: true},
		{name: "warning alias", opts: Options{Level: "warning"}},
		{name: "verbose wins", opts: Options{Level: "error", Verbose: true}, wantDebug: true, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Output = zapcore.AddSync(&buf)
			logger, err := New(tt.opts)
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Info("info line")
			_ = logger.Sync()

			assert.Equal(t, tt.wantDebug, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(buf.String(), "info line"))
		})
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNew_JSONWithCategory(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Output: zapcore.AddSync(&buf)})
	require.NoError(t, err)

	For(logger, CategoryBump).Info("incremented field", zap.String("new", "42"))
	_ = logger.Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bump", entry["logger"])
	assert.Equal(t, "incremented field", entry["msg"])
	assert.Equal(t, "42", entry["new"])
}

func TestNew_Mirror(t *testing.T) {
	var buf bytes.Buffer
	var mirrored []string
	logger, err := New(Options{
		Level:  "error",
		Output: zapcore.AddSync(&buf),
		Mirror: func(line string) { mirrored = append(mirrored, line) },
	})
	require.NoError(t, err)

	For(logger, CategoryPipeline).With(zap.String("path", "app.config.js")).Debug("read file", zap.Int("bytes", 12))

	assert.Empty(t, buf.String(), "the main sink stays at error level")
	require.Len(t, mirrored, 1)
	assert.Equal(t, "pipeline: read file bytes=12 path=app.config.js", mirrored[0])
}
