package launcher

import "strings"

// Launch modes.
const (
	ModeExec  = "exec"
	ModeChild = "child"
)

// BindAddress is the only address the server is ever bound to.
const BindAddress = "0.0.0.0"

// Options describes a single server invocation.
type Options struct {
	Mode              string   // ModeExec or ModeChild
	Port              string   // Resolved port, passed verbatim
	Command           []string // argv prefix, Command[0] is looked up in PATH
	App               string   // Script passed to "run"
	DisableUsageStats bool
	DisableCORS       bool
	DisableXSRF       bool
	ExtraArgs         []string
}

// BuildArgs returns the full argv of the server process:
//
//	<command...> run <app> --server.port=<port> --server.address=0.0.0.0
//	  --server.headless=true [toggles...] [extra...]
//
// Address, headless mode and port are fixed: extra arguments that try to
// set them are dropped.
func BuildArgs(opts Options) []string {
	args := make([]string, 0, len(opts.Command)+8+len(opts.ExtraArgs))
	args = append(args, opts.Command...)
	args = append(args,
		"run", opts.App,
		"--server.port="+opts.Port,
		"--server.address="+BindAddress,
		"--server.headless=true",
	)
	if opts.DisableUsageStats {
		args = append(args, "--browser.gatherUsageStats=false")
	}
	if opts.DisableCORS {
		args = append(args, "--server.enableCORS=false")
	}
	if opts.DisableXSRF {
		args = append(args, "--server.enableXsrfProtection=false")
	}
	for _, extra := range opts.ExtraArgs {
		if reserved(extra) {
			continue
		}
		args = append(args, extra)
	}
	return args
}

var reservedFlags = []string{"--server.port", "--server.address", "--server.headless"}

func reserved(arg string) bool {
	for _, flag := range reservedFlags {
		if arg == flag || strings.HasPrefix(arg, flag+"=") {
			return true
		}
	}
	return false
}
