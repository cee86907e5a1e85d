package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultFetchTimeout bounds remote fetches when the caller has no deadline.
const DefaultFetchTimeout = 12 * time.Second

// GetBytes fetches url and returns the body. Non-2xx responses are errors.
func GetBytes(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
