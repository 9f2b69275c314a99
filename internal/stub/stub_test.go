package stub

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	s, err := ParseArgs([]string{
		"run", "app.py",
		"--server.port=3000",
		"--server.address=0.0.0.0",
		"--server.headless=true",
		"--browser.gatherUsageStats=false",
	})
	require.NoError(t, err)

	assert.Equal(t, "app.py", s.Script)
	assert.Equal(t, "0.0.0.0:3000", s.Addr())
	assert.True(t, s.Headless)
	assert.Equal(t, "false", s.Options["browser.gatherUsageStats"])
}

func TestParseArgsDefaults(t *testing.T) {
	s, err := ParseArgs([]string{"run", "dashboard.py"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:8501", s.Addr())
	assert.False(t, s.Headless)
}

func TestParseArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"run"},
		{"hello", "app.py"},
		{"run", "app.py", "--server.port"},
		{"run", "app.py", "positional"},
	} {
		_, err := ParseArgs(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestHandler(t *testing.T) {
	h := Handler(Settings{Script: "app.py", Address: "0.0.0.0", Port: "8501"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_stcore/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "app.py")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
