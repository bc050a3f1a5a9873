// Package events publishes draft change notifications to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Event names used as the last subject token.
const (
	DraftCreated   = "created"
	StopAppended   = "stop_appended"
	StopUpdated    = "stop_updated"
	StopRemoved    = "stop_removed"
	DraftDiscarded = "discarded"
)

// SubjectPrefix is the first token of every subject this package publishes.
const SubjectPrefix = "drafts"

// PublisherMetrics receives publish outcomes. *metrics.Collector implements it.
type PublisherMetrics interface {
	EventPublishedInc()
	EventPublishErrInc()
	NATSSetConnected(connected bool)
}

// NATSPublisher publishes draft snapshots as JSON.
type NATSPublisher struct {
	nc      *nats.Conn
	log     *slog.Logger
	metrics PublisherMetrics
}

// NewNATSPublisher connects to the NATS server at url. m may be nil.
func NewNATSPublisher(url string, log *slog.Logger, m PublisherMetrics) (*NATSPublisher, error) {
	setConnected := func(v bool) {
		if m != nil {
			m.NATSSetConnected(v)
		}
	}
	nc, err := nats.Connect(url,
		nats.Name("trip-planner-api"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			setConnected(false)
			log.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			setConnected(true)
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			setConnected(false)
			log.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("events: connect %s: %w", url, err)
	}
	setConnected(true)
	return &NATSPublisher{nc: nc, log: log, metrics: m}, nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("nats drain failed", "error", err)
		p.nc.Close()
	}
}

// PublishDraft publishes a snapshot of d under drafts.<id>.<event>.
func (p *NATSPublisher) PublishDraft(event string, d domain.Draft) error {
	b, err := json.Marshal(NewDraftMessage(event, d))
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event, err)
	}
	subject := Subject(d.ID, event)
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.EventPublishErrInc()
		} else {
			p.metrics.EventPublishedInc()
		}
	}
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", subject, err)
	}
	p.log.Debug("event published", "subject", subject)
	return nil
}

// Subject returns the NATS subject for an event on a draft.
func Subject(draftID uuid.UUID, event string) string {
	return SubjectPrefix + "." + draftID.String() + "." + event
}

// DraftMessage is the JSON payload of every draft event.
type DraftMessage struct {
	Event      string        `json:"event"`
	DraftID    uuid.UUID     `json:"draftId"`
	Timestamp  time.Time     `json:"timestamp"`
	Stops      []StopMessage `json:"stops"`
	Activities []string      `json:"activities"`
}

// StopMessage is one stop inside a DraftMessage. Dates are YYYY-MM-DD.
type StopMessage struct {
	ID          int    `json:"id"`
	Destination string `json:"destination"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// NewDraftMessage builds the payload for an event on d.
func NewDraftMessage(event string, d domain.Draft) DraftMessage {
	msg := DraftMessage{
		Event:      event,
		DraftID:    d.ID,
		Timestamp:  d.UpdatedAt,
		Stops:      make([]StopMessage, len(d.Itinerary.Stops)),
		Activities: d.Activities,
	}
	for i, s := range d.Itinerary.Stops {
		msg.Stops[i] = StopMessage{
			ID:          s.ID,
			Destination: s.Destination,
			Start:       s.Dates.Start.Format(time.DateOnly),
			End:         s.Dates.End.Format(time.DateOnly),
		}
	}
	return msg
}
