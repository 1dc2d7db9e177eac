package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	mu      sync.Mutex
	topic   string
	key     []byte
	value   []byte
	err     error
	calls   int
	closed  bool
	release chan struct{}
}

func (p *recordingProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

func (p *recordingProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingProducer) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishFillsEnvelope(t *testing.T) {
	producer := &recordingProducer{}
	p := NewPublisher(producer, "workshop.appointments", discardLogger())

	p.Publish(context.Background(), Event{
		Type:           TypeAppointmentStatusChanged,
		AppointmentID:  "65a1b2c3d4e5f60718293a4b",
		Status:         "in-progress",
		PreviousStatus: "confirmed",
	})
	require.NoError(t, p.Close())

	require.Equal(t, 1, producer.calls)
	assert.True(t, producer.closed)
	assert.Equal(t, "workshop.appointments", producer.topic)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", string(producer.key))

	var got Event
	require.NoError(t, json.Unmarshal(producer.value, &got))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.OccurredAt.IsZero())
	assert.Equal(t, "confirmed", got.PreviousStatus)
}

func TestPublishSwallowsErrors(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	p := NewPublisher(producer, "t", discardLogger())

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Type: TypeAppointmentBooked, AppointmentID: "x"})
	})
	require.NoError(t, p.Close())
	assert.Equal(t, 1, producer.calls)
}

func TestPublishSurvivesCancelledRequest(t *testing.T) {
	producer := &recordingProducer{}
	p := NewPublisher(NewLogProducer(discardLogger()), "t", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.Publish(ctx, Event{Type: TypeAppointmentDeleted, AppointmentID: "x"})
	require.NoError(t, p.Close())

	p = NewPublisher(producer, "t", discardLogger())
	p.Publish(ctx, Event{Type: TypeAppointmentDeleted, AppointmentID: "x"})
	require.NoError(t, p.Close())
	assert.Equal(t, 1, producer.calls)
}

func TestPublishDoesNotWaitForBroker(t *testing.T) {
	producer := &recordingProducer{release: make(chan struct{})}
	p := NewPublisher(producer, "t", discardLogger())

	returned := make(chan struct{})
	go func() {
		p.Publish(context.Background(), Event{Type: TypeAppointmentBooked, AppointmentID: "x"})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stalled producer")
	}
	assert.Zero(t, producer.callCount())

	close(producer.release)
	require.NoError(t, p.Close())
	assert.Equal(t, 1, producer.callCount())
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	producer := &recordingProducer{}
	p := NewPublisher(producer, "t", discardLogger())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	p.Publish(context.Background(), Event{Type: TypeAppointmentBooked, AppointmentID: "x"})
	assert.Zero(t, producer.callCount())
}

func TestNilPublisher(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() { p.Publish(context.Background(), Event{}) })
	assert.NoError(t, p.Close())
}
