package launcher

import "strconv"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ResolvePort returns the value of the environment variable name, or def
// when the variable is unset or empty. The value is returned verbatim: the
// platform owns the port and the launcher does not second-guess it.
// fromEnv reports whether the value came from the environment.
func ResolvePort(lookup LookupFunc, name, def string) (port string, fromEnv bool) {
	if v, ok := lookup(name); ok && v != "" {
		return v, true
	}
	return def, false
}

// ValidPort reports whether port is a decimal TCP port in [1, 65535].
func ValidPort(port string) bool {
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
