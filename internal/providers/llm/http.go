package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const transportAttempts = 3

// postJSON posts body to url with the given headers and returns the
// response bytes. Transient statuses (408/429/5xx) and timeouts are
// retried with short exponential backoff; other failures return
// immediately as *APIError.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt < transportAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		res, err := client.Do(req)
		if err != nil {
			lastErr = err
			if isTimeout(err) {
				sleep(ctx, backoff(attempt))
				continue
			}
			return nil, err
		}
		data, readErr := io.ReadAll(res.Body)
		res.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return data, nil
		}
		lastErr = &APIError{Provider: provider, Status: res.StatusCode, Body: truncate(string(data), 512)}
		if res.StatusCode == http.StatusRequestTimeout || res.StatusCode == http.StatusTooManyRequests ||
			(res.StatusCode >= 500 && res.StatusCode <= 599) {
			sleep(ctx, backoff(attempt))
			continue
		}
		return nil, lastErr
	}
	return nil, lastErr
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	if te, ok := err.(timeout); ok {
		return te.Timeout()
	}
	return false
}

func backoff(attempt int) time.Duration {
	return time.Duration(500*(1<<attempt)) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
