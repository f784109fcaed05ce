package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Configure(level, "json"))
	SetOutput(&buf)
	t.Cleanup(func() {
		_ = Configure("info", "text")
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Configure("loud", "text"))
}

func TestGinLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := capture(t, "info")

	r := gin.New()
	r.Use(GinLogger())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	var lines []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]interface{}
		require.NoError(t, dec.Decode(&entry))
		lines = append(lines, entry)
	}

	// 2xx is logged at debug and filtered out at info.
	require.Len(t, lines, 2)
	assert.Equal(t, "/missing", lines[0]["path"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, float64(404), lines[0]["status"])
	assert.Equal(t, "/boom", lines[1]["path"])
	assert.Equal(t, "error", lines[1]["level"])
}
