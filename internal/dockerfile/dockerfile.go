// Package dockerfile renders the container build for a launcher profile.
//
// The app stage keeps the dependency layer cacheable: the dependency
// manifest is copied and installed before the application source.
// The builder stage copies go.sum when the launcher module has one and
// resolves checksums with go mod tidy when it does not.
package dockerfile

import (
	"errors"
	"fmt"
	"io"
	"text/template"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
)

// Options parameterize the rendered Dockerfile.
type Options struct {
	Profile      string // Launcher profile baked into the image
	GoImage      string // Builder image for the launcher binaries
	PythonImage  string // Base image of the Streamlit app
	LauncherDir  string // Launcher module, relative to the build context
	Requirements string // Python dependency manifest
	WorkDir      string
	ExposePort   string // Documented port, the profile default when empty
}

// DefaultOptions returns the options used by the cmd/dockerfile binary.
func DefaultOptions() Options {
	return Options{
		Profile:      config.DefaultProfile,
		GoImage:      "golang:1.24-alpine",
		PythonImage:  "python:3.11-slim",
		LauncherDir:  "launcher",
		Requirements: "requirements.txt",
		WorkDir:      "/app",
	}
}

var tmpl = template.Must(template.New("Dockerfile").Parse(`# syntax=docker/dockerfile:1
# Generated for launcher profile "{{.Profile}}".

FROM {{.GoImage}} AS launcher
WORKDIR /src
COPY {{.LauncherDir}}/go.mod {{.LauncherDir}}/go.su[m] ./
RUN go mod download
COPY {{.LauncherDir}}/ ./
RUN [ -f go.sum ] || go mod tidy
RUN CGO_ENABLED=0 go build -trimpath -o /out/launcher ./cmd/launcher \
 && CGO_ENABLED=0 go build -trimpath -o /out/healthcheck ./cmd/healthcheck

FROM {{.PythonImage}}
WORKDIR {{.WorkDir}}

COPY {{.Requirements}} .
RUN pip install --no-cache-dir -r {{.Requirements}}

COPY . .

COPY --from=launcher /out/launcher /out/healthcheck /usr/local/bin/
RUN chmod +x /usr/local/bin/launcher /usr/local/bin/healthcheck

ENV LAUNCHER_PROFILE={{.Profile}}
EXPOSE {{.ExposePort}}

HEALTHCHECK --interval=30s --timeout=5s --start-period=60s --retries=3 CMD ["healthcheck"]
CMD ["launcher"]
`))

// Render writes the Dockerfile for opts to w.
func Render(w io.Writer, opts Options) error {
	profile, ok := config.LookupProfile(opts.Profile)
	if !ok {
		return fmt.Errorf("%w: unknown profile %q", config.ErrInvalidConfig, opts.Profile)
	}
	if opts.GoImage == "" || opts.PythonImage == "" || opts.Requirements == "" || opts.WorkDir == "" || opts.LauncherDir == "" {
		return errors.New("dockerfile: images, launcher dir, requirements and workdir are required")
	}
	if opts.ExposePort == "" {
		opts.ExposePort = profile.DefaultPort
	}
	return tmpl.Execute(w, opts)
}
