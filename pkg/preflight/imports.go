package preflight

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// importScript imports every module named in argv and reports each failure
// on stderr, so one run names all missing modules.
const importScript = `import importlib, sys
failed = []
for name in sys.argv[1:]:
    try:
        importlib.import_module(name)
    except Exception as exc:
        failed.append(name)
        print("%s: %s" % (name, exc), file=sys.stderr)
sys.exit(1 if failed else 0)
`

func (r *Runner) checkImports(ctx context.Context) error {
	if r.cfg.ImportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ImportTimeout)
		defer cancel()
	}

	r.logger.Info("Checking Python imports", "python", r.cfg.Python, "modules", r.cfg.Modules)

	args := append([]string{"-c", importScript}, r.cfg.Modules...)
	out, err := r.runPython(ctx, r.cfg.Python, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out after %s", ErrImportCheck, r.cfg.ImportTimeout)
		}
		return fmt.Errorf("%w: %v: %s", ErrImportCheck, err, strings.TrimSpace(string(out)))
	}

	r.logger.Info("Python imports OK", "modules", len(r.cfg.Modules))
	return nil
}

func runPython(ctx context.Context, python string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, python, args...).CombinedOutput()
}
