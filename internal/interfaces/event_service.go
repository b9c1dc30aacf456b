package interfaces

import "context"

// EventType identifies a scan lifecycle event.
type EventType string

const (
	EventScanStarted   EventType = "scan_started"
	EventScanProgress  EventType = "scan_progress"
	EventScanCompleted EventType = "scan_completed"
	EventScanFailed    EventType = "scan_failed"
)

// Event is a published scan lifecycle notification.
type Event struct {
	Type    EventType              `json:"type"`
	ScanID  string                 `json:"scan_id"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes a published event.
type EventHandler func(ctx context.Context, event Event) error

// EventService is an in-process pub/sub bus for scan progress.
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error
	Publish(ctx context.Context, event Event) error
	PublishSync(ctx context.Context, event Event) error
	Close() error
}
