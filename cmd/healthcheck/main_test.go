package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/_stcore/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		code   int
		stderr string
	}{
		{"healthy", "/_stcore/health", 0, ""},
		{"unhealthy", "/broken", 1, "unhealthy: http://127.0.0.1:" + u.Port() + "/broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("PORT", u.Port())
			t.Setenv("LAUNCHER_HEALTH_PATH", tt.path)

			var stderr bytes.Buffer
			assert.Equal(t, tt.code, run(nil, &stderr))
			if tt.stderr == "" {
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), tt.stderr)
			}
		})
	}
}

func TestRunNothingListening(t *testing.T) {
	ln := httptest.NewServer(http.NotFoundHandler())
	u, err := url.Parse(ln.URL)
	require.NoError(t, err)
	ln.Close()

	chdir(t, t.TempDir())
	t.Setenv("PORT", u.Port())

	var stderr bytes.Buffer
	assert.Equal(t, 1, run(nil, &stderr))
}

func TestRunInvalidConfig(t *testing.T) {
	chdir(t, t.TempDir())

	var stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"-profile", "nope"}, &stderr))
	assert.Contains(t, stderr.String(), "Failed to load configuration")
}
