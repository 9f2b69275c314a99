package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/subosito/gotenv"
)

// DotEnvResult lists what LoadDotEnv did with a .env file.
type DotEnvResult struct {
	Path     string   // File that was read, empty if none
	Exported []string // Keys written to the process environment
	Skipped  []string // Keys already present in the environment
}

// LoadDotEnv exports the variables of a .env file into the process
// environment. Variables that are already set, even to an empty value, are
// left alone so that values injected by the platform (PORT in particular)
// always win. A missing file is not an error.
func LoadDotEnv(path string) (DotEnvResult, error) {
	if path == "" {
		return DotEnvResult{}, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return DotEnvResult{}, nil
	}

	env, err := gotenv.Read(path)
	if err != nil {
		return DotEnvResult{}, fmt.Errorf("parse %s: %w", path, err)
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := DotEnvResult{Path: path}
	for _, k := range keys {
		if _, set := os.LookupEnv(k); set {
			res.Skipped = append(res.Skipped, k)
			continue
		}
		if err := os.Setenv(k, env[k]); err != nil {
			return res, fmt.Errorf("export %s: %w", k, err)
		}
		res.Exported = append(res.Exported, k)
	}
	return res, nil
}
