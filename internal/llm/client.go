package llm

import (
	"context"
)

// Client is the text-completion interface used for both SQL translation and
// answer synthesis. Components take this interface so tests can substitute
// a mock without making real API calls.
type Client interface {
	Complete(ctx context.Context, request Request) (*Response, error)
}
