package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_PackageFunctions(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithLevel(LevelDebug), WithFormat(FormatJSON)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, `"level":"DEBUG"`},
		{"Info", Info, `"level":"INFO"`},
		{"Warn", Warn, `"level":"WARN"`},
		{"Error", Error, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), `"key":"value"`)
		})
	}

	buf.Reset()
	TraceContext(t.Context(), "hidden")
	assert.Empty(t, buf.String())

	Config(WithLevel(LevelTrace))
	TraceContext(t.Context(), "shown")
	assert.Contains(t, buf.String(), `"level":"TRACE"`)

	buf.Reset()
	With(slog.String("component", "cli")).Info("tagged")
	assert.Contains(t, buf.String(), `"component":"cli"`)
}
