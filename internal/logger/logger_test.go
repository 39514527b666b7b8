package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("release mode writes json", func(t *testing.T) {
		t.Setenv("GIN_MODE", "release")
		t.Setenv("LOG_LEVEL", "")

		var buf bytes.Buffer
		l := New(&buf)
		assert.Equal(t, logrus.InfoLevel, l.GetLevel())

		l.WithField("orderID", 7).Info("order paid")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "order paid", entry["message"])
		assert.InDelta(t, 7, entry["orderID"], 0)
		assert.Contains(t, entry, "ts")
	})

	t.Run("debug outside release", func(t *testing.T) {
		t.Setenv("GIN_MODE", "debug")
		t.Setenv("LOG_LEVEL", "")

		assert.Equal(t, logrus.DebugLevel, New(&bytes.Buffer{}).GetLevel())
	})

	t.Run("level override", func(t *testing.T) {
		t.Setenv("GIN_MODE", "release")
		t.Setenv("LOG_LEVEL", "warn")

		var buf bytes.Buffer
		l := New(&buf)
		l.Info("hidden")
		assert.Equal(t, logrus.WarnLevel, l.GetLevel())
		assert.Empty(t, buf.String())
	})
}
