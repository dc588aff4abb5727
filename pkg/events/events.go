package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Interview lifecycle event types.
const (
	TypeInterviewCreated   = "interview.created"
	TypeAnswerSubmitted    = "interview.answer_submitted"
	TypeInterviewCompleted = "interview.completed"
)

// Event is the payload published for every lifecycle transition.
type Event struct {
	Type        string                 `json:"type"`
	InterviewID string                 `json:"interviewId"`
	UserID      uint                   `json:"userId"`
	OccurredAt  time.Time              `json:"occurredAt"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// Publisher fans lifecycle events out to other services.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

type natsConn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes events to "<subject>.<event type>".
type NATSPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher builds a publisher on an established connection.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	if conn == nil {
		return newNATSPublisher(nil, subject)
	}
	return newNATSPublisher(conn, subject)
}

func newNATSPublisher(conn natsConn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: strings.Trim(strings.TrimSpace(subject), ".")}
}

// Connect dials the broker. An empty URL disables publishing and returns a nil connection.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return conn, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := p.conn.Publish(p.subjectFor(event.Type), payload); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	return nil
}

func (p *NATSPublisher) subjectFor(eventType string) string {
	if p.subject == "" {
		return eventType
	}
	return p.subject + "." + eventType
}
