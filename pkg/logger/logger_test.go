package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json"}, &buf)

	l.Debug().Msg("hidden")
	l.Info().Uint("id", 7).Msg("livro salvo")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "apenas uma linha JSON esperada: %s", buf.String())
	assert.Equal(t, "livro salvo", entry["message"])
	assert.Equal(t, float64(7), entry["id"])
	assert.Equal(t, "info", entry["level"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug"}, &buf).With().Str("request_id", "abc").Logger()

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Info().Msg("ok")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)

	// 没有Logger时回退到全局Logger
	assert.NotNil(t, FromContext(context.Background()))
}

func TestInit_FileOutput(t *testing.T) {
	prev := *L()
	defer SetLogger(prev)

	path := filepath.Join(t.TempDir(), "app.log")
	closer, err := Init(Config{Level: "info", Output: path})
	require.NoError(t, err)
	defer closer.Close()

	L().Info().Msg("arquivo")
	assert.FileExists(t, path)
}
