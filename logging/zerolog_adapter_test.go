package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_Info_WritesMessageAndFields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapter(zerolog.New(&buf))

	z.Info("task finished", "id", "abc", "success", true)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "task finished", entry["message"])
	require.Equal(t, "abc", entry["id"])
	require.Equal(t, true, entry["success"])
}

func TestZerologAdapter_OddKVCount_IgnoresDanglingKey(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapter(zerolog.New(&buf))

	z.Warn("degraded", "reason")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "degraded", entry["message"])
	require.NotContains(t, entry, "reason")
}

func TestNoop_DoesNotPanic(t *testing.T) {
	var n Noop
	require.NotPanics(t, func() {
		n.Debug("x")
		n.Info("x", "k", "v")
		n.Warn("x")
		n.Error("x")
	})
}
