package health

import (
	"errors"
	"net"
	"net/url"
	"sync"
	"time"
)

// Target is the launched server as seen by the readiness checker.
type Target struct {
	URL         *url.URL
	mux         sync.RWMutex
	alive       bool
	failCount   int
	maxFails    int
	lastChecked time.Time
	lastFailed  time.Time
}

// NewTarget creates a Target for rawURL. The target starts not alive and
// goes down again after maxFails consecutive failed probes.
func NewTarget(rawURL string, maxFails int) (*Target, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("invalid URL: the scheme must be http or https")
	}
	if u.Host == "" {
		return nil, errors.New("invalid URL: requires a host")
	}
	if maxFails < 1 {
		maxFails = 1
	}

	return &Target{URL: u, maxFails: maxFails}, nil
}

// LocalURL returns the loopback URL of a server bound to all interfaces on port.
func LocalURL(port string) string {
	return "http://" + net.JoinHostPort("127.0.0.1", port)
}

// IsAlive returns the target's alive status.
func (t *Target) IsAlive() bool {
	t.mux.RLock()
	defer t.mux.RUnlock()
	return t.alive
}

// LastChecked returns the time of the last recorded probe.
func (t *Target) LastChecked() time.Time {
	t.mux.RLock()
	defer t.mux.RUnlock()
	return t.lastChecked
}

// SetAlive records a probe result with the failure threshold applied and
// reports whether the alive status changed.
func (t *Target) SetAlive(alive bool) bool {
	t.mux.Lock()
	defer t.mux.Unlock()

	was := t.alive
	t.lastChecked = time.Now()
	if alive {
		t.alive = true
		t.failCount = 0
		t.lastFailed = time.Time{}
	} else {
		t.failCount++
		t.lastFailed = t.lastChecked
		if t.failCount >= t.maxFails {
			t.alive = false
			t.failCount = t.maxFails
		}
	}
	return was != t.alive
}
