package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, zerolog.DebugLevel, "json", "")

	l.With(String("component", "fred")).Info("fetched",
		Int("points", 6),
		Float64("value", 4.1),
		Bool("ok", true),
		Duration("took", 1500*time.Millisecond),
		Strings("tickers", []string{"SPY", "TLT"}),
		Error(errors.New("boom")))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "fetched", m["message"])
	assert.Equal(t, "fred", m["component"])
	assert.Equal(t, 6.0, m["points"])
	assert.Equal(t, 4.1, m["value"])
	assert.Equal(t, true, m["ok"])
	assert.Equal(t, 1500.0, m["took"])
	assert.Equal(t, "SPY,TLT", m["tickers"])
	assert.Equal(t, "boom", m["error"])
	assert.Contains(t, m["caller"], "logger_test.go")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, zerolog.WarnLevel, "json", "")
	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().With(Any("k", 1)).Error("ignored", Error(nil))
	})
}
