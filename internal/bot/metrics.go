package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	UpdateProcessingTime prometheus.Histogram
	BookingsCreated      prometheus.Counter
	BookingsCancelled    prometheus.Counter
	SlotsCreated         prometheus.Counter
	RemindersSent        prometheus.Counter
	BroadcastsSent       prometheus.Counter
	ErrorsTotal          prometheus.Counter
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_created_total",
			Help: "Total number of bookings created",
		}),

		BookingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_cancelled_total",
			Help: "Total number of bookings cancelled",
		}),

		SlotsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_slots_created_total",
			Help: "Total number of slots created",
		}),

		RemindersSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_reminders_sent_total",
			Help: "Total number of reminders delivered",
		}),

		BroadcastsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_broadcasts_sent_total",
			Help: "Total number of broadcast messages enqueued",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of processing errors",
		}),
	}
}
