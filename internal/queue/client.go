package queue

import (
	"context"
	"errors"
)

// Dispatcher validates and sends processing messages, returning the
// queue's message id. Dispatchers never retry; retry policy belongs to
// the caller.
type Dispatcher interface {
	SendProcessingMessage(ctx context.Context, msg ProcessingMessage) (string, error)
}

// NoopDispatcher stands in when no queue is configured. Every send fails
// as non-retryable, which exercises the caller's degradation path
// instead of silently dropping messages.
type NoopDispatcher struct{}

// SendProcessingMessage validates the message, then fails.
func (NoopDispatcher) SendProcessingMessage(_ context.Context, msg ProcessingMessage) (string, error) {
	if _, err := Validate(msg); err != nil {
		return "", err
	}
	return "", &SendError{Code: "QUEUE_NOT_CONFIGURED", Retryable: false, Err: errors.New("no queue configured")}
}

var _ Dispatcher = NoopDispatcher{}
