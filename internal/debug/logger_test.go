package debug

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLevels(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf})
	t.Cleanup(func() { Init(false) })

	Debug("hidden")
	Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, Enabled())

	SetDebug(true)
	Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
	assert.True(t, Enabled())
}

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf, Format: "json"})
	t.Cleanup(func() { Init(false) })

	With("request_id", "abc").Warn("careful")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "careful", rec["msg"])
	assert.Equal(t, "abc", rec["request_id"])
}
