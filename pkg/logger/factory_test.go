package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pintpoint/realtimekit/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults to JSON at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))

		log.Debug("hidden")
		log.Info("visible")

		require.NotEmpty(t, buf.String())
		assert.NotContains(t, buf.String(), "hidden")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "visible", record["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithFormat(logger.FormatText),
		)

		log.Info("hello")
		assert.True(t, strings.Contains(buf.String(), "msg=hello"))
	})

	t.Run("static attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(logger.Component("mux")),
		)

		log.Info("event")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "mux", record["component"])
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			logger.New(logger.WithFormat(logger.Format("xml")))
		})
	})

	t.Run("development preset", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithDevelopment("realtimekit"),
			logger.WithOutput(&buf),
		)

		log.Debug("debug is on")
		assert.Contains(t, buf.String(), "debug is on")
		assert.Contains(t, buf.String(), "service=realtimekit")
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	t.Run("nil error yields empty attr", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, slog.Attr{}, logger.Error(nil))
	})

	t.Run("nil ids yield empty attrs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, slog.Attr{}, logger.UserID(nil))
		assert.Equal(t, slog.Attr{}, logger.VenueID(nil))
		assert.Equal(t, slog.Attr{}, logger.EventID(nil))
	})

	t.Run("keys are stable", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "user_id", logger.UserID("u1").Key)
		assert.Equal(t, "channel", logger.Channel("venue").Key)
		assert.Equal(t, "table", logger.Table("venue_hours").Key)
		assert.Equal(t, "subscription_id", logger.SubscriptionID("s1").Key)
	})
}
