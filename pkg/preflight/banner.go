package preflight

import (
	"fmt"
	"io"
	"strings"
)

// Banner is the human-readable block printed before launch, meant for
// reading container logs after a crash.
type Banner struct {
	Profile     string
	Mode        string
	PortEnv     string
	Port        string
	PortFromEnv bool
	App         string
	Args        []string
}

// Write renders the banner to w.
func (b Banner) Write(w io.Writer) error {
	source := "default"
	if b.PortFromEnv {
		source = "$" + b.PortEnv
	}

	rule := strings.Repeat("=", 60)
	_, err := fmt.Fprintf(w,
		"%s\nStarting Streamlit\n  profile: %s\n  mode:    %s\n  port:    %s (%s)\n  address: 0.0.0.0\n  app:     %s\n  command: %s\n%s\n",
		rule, b.Profile, b.Mode, b.Port, source, b.App, strings.Join(b.Args, " "), rule)
	return err
}
