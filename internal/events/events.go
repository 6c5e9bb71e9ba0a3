// Package events announces completed generations on a message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event describes one finished generation.
type Event struct {
	GenerationID string    `json:"generation_id"`
	Technology   string    `json:"technology"`
	ProjectName  string    `json:"project_name"`
	ArchiveName  string    `json:"archive_name"`
	ArchiveSize  int64     `json:"archive_size"`
	FileCount    int       `json:"file_count"`
	PublishedURL string    `json:"published_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Conn is the part of *nats.Conn the notifier needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes events as JSON on one subject.
type NATSNotifier struct {
	conn    Conn
	subject string
	closer  func()
}

// NewNATSNotifier publishes through an existing connection.
func NewNATSNotifier(conn Conn, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject}
}

// Dial connects to url and returns a notifier that owns the connection.
func Dial(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url, nats.Name("paperstack"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	n := NewNATSNotifier(nc, subject)
	n.closer = func() { _ = nc.Drain() }
	return n, nil
}

// Subject returns the subject events are published on.
func (n *NATSNotifier) Subject() string { return n.subject }

// Notify publishes e. NATS core publish does not take a context, so a
// cancelled context is checked up front.
func (n *NATSNotifier) Notify(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close drains the connection if the notifier owns it.
func (n *NATSNotifier) Close() {
	if n.closer != nil {
		n.closer()
	}
}
