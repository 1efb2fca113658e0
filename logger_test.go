package multikey

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_StoreOperations(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := New[string, int]([]string{"a", "b"}, WithLogger(logger), WithIDGenerator(NewSequenceGenerator("")))
	require.NoError(t, err)

	_, err = s.Add(map[string]string{"a": "x", "b": "y"}, 1)
	require.NoError(t, err)
	_, err = s.Add(map[string]string{"a": "x"}, 1)
	require.Error(t, err)
	require.NoError(t, s.SetKey("1", "b", "z"))
	_, err = s.Pop("a", "x")
	require.NoError(t, err)
	s.Clear()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 5)

	msgs := make([]string, len(lines))
	for i, l := range lines {
		msgs[i] = l["msg"].(string)
		assert.Equal(t, []any{"a", "b"}, l["key_spaces"])
	}
	assert.Equal(t, []string{"add completed", "add rejected", "set key completed", "pop completed", "store cleared"}, msgs)

	assert.Equal(t, "1", lines[0]["id"])
	assert.Contains(t, lines[1]["error"], "key occupied")
	assert.Equal(t, true, lines[2]["replaced"])
	assert.Equal(t, float64(2), lines[3]["keys_removed"])
}

func TestLogger_Snapshot(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	s, err := New[string, int]([]string{"a"}, WithLogger(logger))
	require.NoError(t, err)
	_, err = s.Add(map[string]string{"a": "x"}, 1)
	require.NoError(t, err)

	require.NoError(t, s.Save(&bytes.Buffer{}))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1, "debug records are filtered at info level")
	assert.Equal(t, "snapshot completed", lines[0]["msg"])
	assert.Equal(t, "save", lines[0]["op"])
	assert.Equal(t, float64(1), lines[0]["objects"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
	assert.NotNil(t, NewLogger(nil))
	assert.NotNil(t, NewJSONLogger(slog.LevelDebug))
	assert.NotNil(t, NewTextLogger(slog.LevelDebug))
}
