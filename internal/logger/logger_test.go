package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "debug", "json"), "exercise_service")

	log.Info().Str("exercise_id", "abc").Msg("created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "exercise_service", line["component"])
	assert.Equal(t, "abc", line["exercise_id"])
	assert.Equal(t, "created", line["message"])
	assert.Equal(t, ServiceName, line["service"])
	assert.Contains(t, line, "time")
	assert.Contains(t, line, "caller")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	_ = New(&buf, "loud", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	_ = New(&buf, "", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "pretty")
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
	assert.NotContains(t, buf.String(), "\x1b[", "no color codes outside a terminal")
}
