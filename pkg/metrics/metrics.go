package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Booking lifecycle metrics
	BookingsCreated  prometheus.Counter
	BookingsUpdated  prometheus.Counter
	BookingsDeleted  prometheus.Counter
	BookingConflicts prometheus.Counter
	BookingsExpired  prometheus.Counter

	// Notification metrics
	NotificationsPublished prometheus.Counter
	NotificationsFailed    prometheus.Counter
	NotificationsDropped   prometheus.Counter

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
}

// New creates application metrics without registering them, so tests can
// construct throwaway instances. Call Register to expose them.
func New(namespace string) *Metrics {
	return &Metrics{
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings created",
		}),
		BookingsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_updated_total",
			Help:      "Total number of bookings updated",
		}),
		BookingsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_deleted_total",
			Help:      "Total number of bookings deleted",
		}),
		BookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Total number of bookings rejected because of schedule conflicts",
		}),
		BookingsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_expired_total",
			Help:      "Total number of expired bookings removed by cleanup",
		}),
		NotificationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Total number of booking notifications published",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Total number of booking notifications that failed to publish",
		}),
		NotificationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Total number of booking notifications dropped because the queue was full",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path", "status"}),
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

// Register registers all metrics with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.BookingsCreated,
		m.BookingsUpdated,
		m.BookingsDeleted,
		m.BookingConflicts,
		m.BookingsExpired,
		m.NotificationsPublished,
		m.NotificationsFailed,
		m.NotificationsDropped,
		m.RequestDuration,
		m.RequestTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
