package interfaces

import "context"

// Message is a queued scan job envelope.
type Message struct {
	JobID   string `json:"job_id"`
	Type    string `json:"type"`
	Payload []byte `json:"payload"`
}

// QueueManager is a persistent FIFO-ish queue with visibility timeouts.
// Receive returns the next visible message together with an ack function that
// removes it from the queue; unacked messages become visible again after the
// visibility timeout, up to the max receive count.
type QueueManager interface {
	Enqueue(ctx context.Context, msg Message) error
	Receive(ctx context.Context) (*Message, func() error, error)
	Size(ctx context.Context) (int, error)
	Close() error
}
