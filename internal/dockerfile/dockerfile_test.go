package dockerfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
)

func TestRenderLayerOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, DefaultOptions()))
	out := buf.String()

	steps := []string{
		"COPY requirements.txt .",
		"RUN pip install --no-cache-dir -r requirements.txt",
		"COPY . .",
		"RUN chmod +x /usr/local/bin/launcher /usr/local/bin/healthcheck",
		`CMD ["launcher"]`,
	}
	last := -1
	for _, step := range steps {
		idx := strings.Index(out, step)
		require.NotEqual(t, -1, idx, "missing %q", step)
		assert.Greater(t, idx, last, "%q is out of order", step)
		last = idx
	}
}

func TestRenderBuilderWithoutGoSum(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, DefaultOptions()))
	out := buf.String()

	// go.sum is optional in the COPY glob and regenerated before building.
	assert.Contains(t, out, "COPY launcher/go.mod launcher/go.su[m] ./")
	assert.NotContains(t, out, "launcher/go.sum ./")
	tidy := strings.Index(out, "RUN [ -f go.sum ] || go mod tidy")
	build := strings.Index(out, "go build -trimpath -o /out/launcher")
	require.NotEqual(t, -1, tidy)
	assert.Less(t, tidy, build)
}

func TestRenderProfileDefaults(t *testing.T) {
	tests := []struct {
		profile string
		port    string
	}{
		{"streamlit", "8501"},
		{"railway", "8080"},
		{"railway-debug", "8080"},
		{"minimal", "8501"},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Profile = tt.profile

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, opts))
			assert.Contains(t, buf.String(), "ENV LAUNCHER_PROFILE="+tt.profile)
			assert.Contains(t, buf.String(), "EXPOSE "+tt.port)
		})
	}
}

func TestRenderExplicitPort(t *testing.T) {
	opts := DefaultOptions()
	opts.ExposePort = "3000"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, opts))
	assert.Contains(t, buf.String(), "EXPOSE 3000")
}

func TestRenderErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.Profile = "heroku"
	assert.ErrorIs(t, Render(&bytes.Buffer{}, opts), config.ErrInvalidConfig)

	opts = DefaultOptions()
	opts.PythonImage = ""
	assert.Error(t, Render(&bytes.Buffer{}, opts))
}
