package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/nav-agent/internal/models"
)

// Response is one completion: the raw text, whatever usage metadata the
// provider reported, and the untouched response body for the ledger.
type Response struct {
	Text  string
	Usage models.Usage
	Raw   json.RawMessage
}

// Client sends one rendered prompt to a completion endpoint. Clients
// are stateless and hold no retry policy beyond transport-level
// retries on transient HTTP statuses.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// APIError reports a non-2xx response from a provider endpoint.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Status, e.Body)
}
