package internal

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"debug", true, true},
		{"DEBUG", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"nonsense", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, "development", tt.level)

			logger.Debug("debug line")
			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("debug line")))

			logger.Info("info line")
			assert.Equal(t, tt.infoSeen, bytes.Contains(buf.Bytes(), []byte("info line")))
		})
	}
}

func TestNewLogger_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "production", "info").Info("started", "port", 8080)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "started", line["msg"])
	assert.Equal(t, "production", line["env"])
	assert.Equal(t, float64(8080), line["port"])
}

func TestNewLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "production", "info").Info("login",
		"email", "owner@example.com",
		"password", "Str0ngEnough",
		"Authorization", "Bearer abc",
	)

	out := buf.String()
	assert.Contains(t, out, "owner@example.com")
	assert.NotContains(t, out, "Str0ngEnough")
	assert.NotContains(t, out, "Bearer abc")
	assert.Contains(t, out, "[REDACTED]")
}
