package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TypeAppointmentBooked        = "appointment.booked"
	TypeAppointmentStatusChanged = "appointment.status_changed"
	TypeAppointmentDeleted       = "appointment.deleted"
)

type Event struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	AppointmentID  string    `json:"appointmentId"`
	MechanicID     string    `json:"mechanicId,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher sends appointment lifecycle events in the background. Delivery
// is best effort: failures are logged and never reach the caller.
type Publisher struct {
	producer Producer
	topic    string
	log      *slog.Logger
	timeout  time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewPublisher(producer Producer, topic string, log *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      log,
		timeout:  3 * time.Second,
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.producer == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("events publish: encode failed", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.log.Warn("events publish: publisher closed", slog.String("type", event.Type))
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		p.send(context.WithoutCancel(ctx), event, payload)
	}()
}

func (p *Publisher) send(ctx context.Context, event Event, payload []byte) {
	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.producer.SendMessage(sendCtx, p.topic, []byte(event.AppointmentID), payload); err != nil {
		p.log.Warn("events publish: send failed",
			slog.String("type", event.Type),
			slog.String("appointment_id", event.AppointmentID),
			slog.String("error", err.Error()),
		)
	}
}

// Close waits for in-flight sends before closing the producer.
func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.inflight.Wait()
	return p.producer.Close()
}
