package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ridehail"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	ridesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "rides_created_total",
			Help:      "Ride creation attempts by result.",
		},
		[]string{"result"},
	)
	statusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "status_updates_total",
			Help:      "Ride status update attempts by target status and result.",
		},
		[]string{"status", "result"},
	)
	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Ride store operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "success"},
	)
	roomEmits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "messages_total",
			Help:      "Outbound socket messages by event and outcome.",
		},
		[]string{"event", "outcome"},
	)
	activeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "active_connections",
			Help:      "Currently registered socket connections.",
		},
	)
	activeRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "active_rooms",
			Help:      "Ride rooms with at least one member.",
		},
	)
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "events_published_total",
			Help:      "Ride events published to the broker by routing key and result.",
		},
		[]string{"routing_key", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			ridesCreated,
			statusUpdates,
			storeDuration,
			roomEmits,
			activeConnections,
			activeRooms,
			eventsPublished,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordRideCreated(result string) {
	RegisterMetrics()
	ridesCreated.WithLabelValues(result).Inc()
}

func RecordStatusUpdate(status, result string) {
	RegisterMetrics()
	statusUpdates.WithLabelValues(status, result).Inc()
}

func RecordStoreOperation(operation string, duration time.Duration, success bool) {
	RegisterMetrics()
	storeDuration.WithLabelValues(operation, strconv.FormatBool(success)).Observe(duration.Seconds())
}

// RecordEmit counts one fan-out: delivered and dropped recipients are tallied separately.
func RecordEmit(event string, delivered, dropped int) {
	RegisterMetrics()
	if delivered > 0 {
		roomEmits.WithLabelValues(event, "delivered").Add(float64(delivered))
	}
	if dropped > 0 {
		roomEmits.WithLabelValues(event, "dropped").Add(float64(dropped))
	}
}

func SetActiveConnections(n int) {
	RegisterMetrics()
	activeConnections.Set(float64(n))
}

func SetActiveRooms(n int) {
	RegisterMetrics()
	activeRooms.Set(float64(n))
}

func RecordPublish(routingKey string, success bool) {
	RegisterMetrics()
	eventsPublished.WithLabelValues(routingKey, strconv.FormatBool(success)).Inc()
}
