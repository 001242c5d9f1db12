package llm

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeminiClientOwnsSDKHandle(t *testing.T) {
	// The factory hands ownership to the caller, so the client must be
	// closable through the common io.Closer shape.
	assert.Implements(t, (*io.Closer)(nil), new(GeminiClient))
}
