package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultPath is the health endpoint served by Streamlit.
const DefaultPath = "/_stcore/health"

const userAgent = "streamlit-launcher-healthcheck/1.0"

// NewClient returns an HTTP client suited to probing a local server.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: timeout,
		},
		Timeout: timeout,
	}
}

// StatusError is returned by Probe for a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unhealthy status %d", e.StatusCode)
}

// Probe performs a single GET on url. Any 2xx status is healthy.
func Probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
