// Package stub implements a stand-in for the Streamlit CLI that accepts the
// same "run" command line and serves the health endpoint. It lets the
// launcher be smoke-tested in images without Python.
package stub

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Settings is what the stub understood from its command line.
type Settings struct {
	Script   string
	Address  string
	Port     string
	Headless bool
	Options  map[string]string // Every --key=value pair
}

// Addr returns the listen address.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Address, s.Port)
}

// ParseArgs parses "run <script> [--key=value ...]".
func ParseArgs(args []string) (Settings, error) {
	if len(args) < 2 || args[0] != "run" {
		return Settings{}, errors.New("usage: run <script> [--key=value ...]")
	}

	s := Settings{
		Script:  args[1],
		Address: "localhost",
		Port:    "8501",
		Options: map[string]string{},
	}
	for _, arg := range args[2:] {
		key, value, ok := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !strings.HasPrefix(arg, "--") || !ok {
			return Settings{}, fmt.Errorf("unsupported argument %q", arg)
		}
		s.Options[key] = value

		switch key {
		case "server.port":
			s.Port = value
		case "server.address":
			s.Address = value
		case "server.headless":
			s.Headless = value == "true"
		}
	}
	return s, nil
}

// Handler serves the health endpoint and a plain index page.
func Handler(s Settings) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/_stcore/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "stub streamlit serving %s on %s\n", s.Script, s.Addr())
	})
	return mux
}
