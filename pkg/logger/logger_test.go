package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}

func TestInitWithWriter_AddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("logbook-service", "info", &buf)

	Info().Str("review_id", "42").Msg("Review created")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "logbook-service", entry["service"])
	assert.Equal(t, "42", entry["review_id"])
	assert.Equal(t, "Review created", entry["message"])
}

func TestInitWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("logbook-service", "warn", &buf)

	Info().Msg("skipped")
	assert.Zero(t, buf.Len())

	Warn().Msg("kept")
	assert.Equal(t, "kept", lastEntry(t, &buf)["message"])
}

func TestGinLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	InitWithWriter("logbook-service", "debug", &buf)

	router := gin.New()
	router.Use(GinLoggerMiddleware())
	router.GET("/ok", func(c *gin.Context) {
		FromGin(c).Info().Msg("inside handler")
		c.Status(http.StatusOK)
	})
	router.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	t.Run("propagates request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		var inner map[string]interface{}
		require.NoError(t, json.Unmarshal(lines[0], &inner))
		assert.Equal(t, "req-1", inner["request_id"])

		access := lastEntry(t, &buf)
		assert.Equal(t, "HTTP request", access["message"])
		assert.Equal(t, "info", access["level"])
		assert.EqualValues(t, 200, access["status"])
	})

	t.Run("generates request id and logs 5xx as error", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		assert.Equal(t, "error", lastEntry(t, &buf)["level"])
	})
}
