package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesCategories(t *testing.T) {
	var buf bytes.Buffer
	l := newZapLogger(&LoggerConfig{Logger: "zap", Level: "info", Encoding: "json"})
	l.out = &buf
	l.Init()

	l.Debug(Dispatch, Emit, "hidden", nil)
	l.Info(Dispatch, Emit, "ride broadcast", map[ExtraKey]any{RideID: "r1", Delivered: 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ride broadcast", entry["msg"])
	assert.Equal(t, "Dispatch", entry["Category"])
	assert.Equal(t, "Emit", entry["SubCategory"])
	assert.Equal(t, "r1", entry["RideId"])
	assert.EqualValues(t, 3, entry["Delivered"])
}

func TestZeroLogger_WritesCategories(t *testing.T) {
	var buf bytes.Buffer
	l := newZeroLogger(&LoggerConfig{Logger: "zerolog", Level: "warn", Encoding: "json"})
	l.out = &buf
	l.Init()

	l.Info(WebSocket, Join, "hidden", nil)
	l.Warn(WebSocket, Emit, "send buffer full", map[ExtraKey]any{ConnID: "c1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "send buffer full", entry["message"])
	assert.Equal(t, "WebSocket", entry["Category"])
	assert.Equal(t, "c1", entry["ConnId"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewLogger_UnknownBackend(t *testing.T) {
	assert.Panics(t, func() {
		NewLogger(&LoggerConfig{Logger: "logrus"})
	})
}
