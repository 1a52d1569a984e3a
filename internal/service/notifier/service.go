package notifier

import (
	"context"
	"fmt"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/pkg/logger"
	"github.com/clinicdesk/clinic-api/pkg/messaging"
	"github.com/clinicdesk/clinic-api/pkg/metrics"
)

const queueSize = 256

// Notification is the payload published to a doctor's topic.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Dispatcher turns booking events into human-readable notifications for the
// affected doctor and publishes them to the doctor's topic (the doctor's
// account id). Events are queued and drained by a single goroutine, so
// delivery order matches mutation commit order. Publishing is best-effort:
// failures are logged and counted, never propagated to the booking caller.
type Dispatcher struct {
	broker  messaging.Broker
	logger  *logger.Logger
	metrics *metrics.Metrics
	queue   chan *model.BookingEvent
}

func NewDispatcher(broker messaging.Broker, logger *logger.Logger, metrics *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		broker:  broker,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan *model.BookingEvent, queueSize),
	}
}

// Start drains the queue until ctx is cancelled. Run it in its own goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.dispatch(ctx, event)
		}
	}
}

func (d *Dispatcher) HandleBookingEvent(_ context.Context, event *model.BookingEvent) error {
	select {
	case d.queue <- event:
	default:
		d.metrics.NotificationsDropped.Inc()
		d.logger.ZL.Warn().
			Str("event", string(event.Type)).
			Msg("notification queue full, dropping event")
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, event *model.BookingEvent) {
	topic, notification := Compose(event)
	if notification == nil {
		return
	}

	if err := d.broker.Publish(ctx, topic, notification); err != nil {
		d.metrics.NotificationsFailed.Inc()
		d.logger.ZL.Error().Err(err).
			Str("topic", topic).
			Str("event", string(event.Type)).
			Msg("failed to publish notification")
		return
	}
	d.metrics.NotificationsPublished.Inc()
}

// Compose builds the notification for an event and the topic it goes to.
// The topic is the doctor's account id, which doubles as the doctor id.
func Compose(event *model.BookingEvent) (string, *Notification) {
	snapshot := event.Snapshot()
	if snapshot == nil || snapshot.Doctor == nil {
		return "", nil
	}
	topic := snapshot.DoctorID.String()

	switch event.Type {
	case model.BookingCreated:
		b := event.New
		return topic, &Notification{
			Type: "booking_created",
			Message: fmt.Sprintf(
				"%s, you have a new booking for service '%s' from %s to %s on %s, your patient is %s, price is %s",
				b.Doctor.FullName(),
				b.Service.Name,
				b.StartTime.Format(model.TimeLayout),
				b.EndTime.Format(model.TimeLayout),
				b.Date.Format(model.DateLayout),
				b.Patient.FullName(),
				b.Service.Price.StringFixed(2),
			),
		}
	case model.BookingUpdated:
		oldB, newB := event.Old, event.New
		return topic, &Notification{
			Type: "booking_updated",
			Message: fmt.Sprintf(
				"%s, your booking for service '%s' from %s to %s, patient %s changed to service '%s' from %s to %s on %s, your patient is %s, price is %s",
				newB.Doctor.FullName(),
				oldB.Service.Name,
				oldB.StartTime.Format(model.TimeLayout),
				oldB.EndTime.Format(model.TimeLayout),
				oldB.Patient.FullName(),
				newB.Service.Name,
				newB.StartTime.Format(model.TimeLayout),
				newB.EndTime.Format(model.TimeLayout),
				newB.Date.Format(model.DateLayout),
				newB.Patient.FullName(),
				newB.Service.Price.StringFixed(2),
			),
		}
	case model.BookingDeleted:
		b := event.Old
		return topic, &Notification{
			Type: "booking_cancelled",
			Message: fmt.Sprintf(
				"%s, your booking for service '%s' from %s to %s on %s, patient %s was cancelled",
				b.Doctor.FullName(),
				b.Service.Name,
				b.StartTime.Format(model.TimeLayout),
				b.EndTime.Format(model.TimeLayout),
				b.Date.Format(model.DateLayout),
				b.Patient.FullName(),
			),
		}
	}
	return "", nil
}
