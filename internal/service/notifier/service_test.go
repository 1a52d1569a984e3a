package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/pkg/logger"
	"github.com/clinicdesk/clinic-api/pkg/metrics"
)

type published struct {
	topic   string
	message interface{}
}

type fakeBroker struct {
	mu        sync.Mutex
	published []published
	err       error
	done      chan struct{} // closed channel signalling is per-publish
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{done: make(chan struct{}, 64)}
}

func (b *fakeBroker) Publish(_ context.Context, topic string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		b.done <- struct{}{}
		return b.err
	}
	b.published = append(b.published, published{topic: topic, message: message})
	b.done <- struct{}{}
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) waitForPublishes(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-b.done:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for publish %d of %d", i+1, n)
		}
	}
}

func (b *fakeBroker) all() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.published...)
}

func eventFixture(t *testing.T, typ model.BookingEventType) *model.BookingEvent {
	t.Helper()
	date, err := model.ParseDate("2026-09-01")
	require.NoError(t, err)
	start, err := model.ParseClock("10:00")
	require.NoError(t, err)
	end, err := model.ParseClock("11:00")
	require.NoError(t, err)

	b := model.Booking{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		ServiceID: uuid.New(),
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	b.ID = uuid.New()

	detail := &model.BookingDetail{
		Booking: b,
		Patient: &model.Patient{Base: model.Base{ID: b.PatientID}, Name: "Jane", LastName: "Doe"},
		Doctor:  &model.Doctor{Base: model.Base{ID: b.DoctorID}, Name: "Gregory", LastName: "House"},
		Service: &model.Service{Base: model.Base{ID: b.ServiceID}, Name: "Checkup", Price: decimal.NewFromFloat(49.9)},
	}

	switch typ {
	case model.BookingCreated:
		return &model.BookingEvent{Type: typ, New: detail}
	case model.BookingDeleted:
		return &model.BookingEvent{Type: typ, Old: detail}
	default:
		moved := *detail
		movedBooking := b
		movedStart, _ := model.ParseClock("14:00")
		movedEnd, _ := model.ParseClock("15:00")
		movedBooking.StartTime = movedStart
		movedBooking.EndTime = movedEnd
		moved.Booking = movedBooking
		return &model.BookingEvent{Type: typ, Old: detail, New: &moved}
	}
}

func TestComposeCreated(t *testing.T) {
	event := eventFixture(t, model.BookingCreated)

	topic, n := Compose(event)
	require.NotNil(t, n)
	assert.Equal(t, event.New.DoctorID.String(), topic, "topic is the doctor id")
	assert.Equal(t, "booking_created", n.Type)
	assert.Equal(t,
		"Gregory House, you have a new booking for service 'Checkup' from 10:00 to 11:00 on 2026-09-01, your patient is Jane Doe, price is 49.90",
		n.Message)
}

func TestComposeUpdated(t *testing.T) {
	event := eventFixture(t, model.BookingUpdated)

	topic, n := Compose(event)
	require.NotNil(t, n)
	assert.Equal(t, event.New.DoctorID.String(), topic)
	assert.Equal(t, "booking_updated", n.Type)
	assert.Contains(t, n.Message, "from 10:00 to 11:00")
	assert.Contains(t, n.Message, "changed to service 'Checkup' from 14:00 to 15:00")
}

func TestComposeDeleted(t *testing.T) {
	event := eventFixture(t, model.BookingDeleted)

	topic, n := Compose(event)
	require.NotNil(t, n)
	assert.Equal(t, event.Old.DoctorID.String(), topic)
	assert.Equal(t, "booking_cancelled", n.Type)
	assert.Equal(t,
		"Gregory House, your booking for service 'Checkup' from 10:00 to 11:00 on 2026-09-01, patient Jane Doe was cancelled",
		n.Message)
}

func TestComposeMissingSnapshot(t *testing.T) {
	_, n := Compose(&model.BookingEvent{Type: model.BookingCreated})
	assert.Nil(t, n)
}

func TestDispatcherPublishes(t *testing.T) {
	broker := newFakeBroker()
	d := NewDispatcher(broker, logger.Nop(), metrics.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	event := eventFixture(t, model.BookingCreated)
	require.NoError(t, d.HandleBookingEvent(ctx, event))

	broker.waitForPublishes(t, 1)
	got := broker.all()
	require.Len(t, got, 1)
	assert.Equal(t, event.New.DoctorID.String(), got[0].topic)

	n, ok := got[0].message.(*Notification)
	require.True(t, ok)
	assert.Equal(t, "booking_created", n.Type)
}

func TestDispatcherPreservesOrder(t *testing.T) {
	broker := newFakeBroker()
	d := NewDispatcher(broker, logger.Nop(), metrics.New("test"))

	created := eventFixture(t, model.BookingCreated)
	updated := &model.BookingEvent{Type: model.BookingUpdated, Old: created.New, New: created.New}
	deleted := &model.BookingEvent{Type: model.BookingDeleted, Old: created.New}

	// enqueue before the drain goroutine runs so ordering is deterministic
	require.NoError(t, d.HandleBookingEvent(context.Background(), created))
	require.NoError(t, d.HandleBookingEvent(context.Background(), updated))
	require.NoError(t, d.HandleBookingEvent(context.Background(), deleted))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	broker.waitForPublishes(t, 3)
	got := broker.all()
	require.Len(t, got, 3)
	assert.Equal(t, "booking_created", got[0].message.(*Notification).Type)
	assert.Equal(t, "booking_updated", got[1].message.(*Notification).Type)
	assert.Equal(t, "booking_cancelled", got[2].message.(*Notification).Type)
}

func TestDispatcherPublishFailureIsSwallowed(t *testing.T) {
	broker := newFakeBroker()
	broker.err = assert.AnError
	d := NewDispatcher(broker, logger.Nop(), metrics.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	require.NoError(t, d.HandleBookingEvent(ctx, eventFixture(t, model.BookingCreated)))
	broker.waitForPublishes(t, 1)
	assert.Empty(t, broker.all())
}

func TestDispatcherFullQueueDropsEvent(t *testing.T) {
	broker := newFakeBroker()
	d := NewDispatcher(broker, logger.Nop(), metrics.New("test"))

	// no drain goroutine: fill the queue to the brim, then one more
	event := eventFixture(t, model.BookingCreated)
	for i := 0; i < queueSize; i++ {
		require.NoError(t, d.HandleBookingEvent(context.Background(), event))
	}

	err := d.HandleBookingEvent(context.Background(), event)
	assert.NoError(t, err, "a full queue must never block or fail the caller")
}
