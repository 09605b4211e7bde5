// Package netx holds small network helpers shared by client components.
package netx

import (
	"context"
	"net/http"
	"time"
)

// IsOnline reports whether the server health endpoint answers with a 2xx
// within the given timeout. It is a best-effort probe: any transport error
// or unexpected status is treated as offline.
func IsOnline(ctx context.Context, healthURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
