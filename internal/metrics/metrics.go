package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	SessionTransitionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_session_transitions_total",
			Help: "Session status transitions.",
		},
		[]string{"from", "to"},
	)
	ActiveSubscriptionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobmarket_live_subscriptions_active",
			Help: "Number of currently open live query subscriptions.",
		},
	)
	ProfileLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobmarket_profile_load_duration_seconds",
			Help:    "Duration of profile point-reads in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"outcome"},
	)
	NotificationsSentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_notifications_sent_total",
			Help: "Total number of push notifications handed to a sender.",
		},
		[]string{"sender"},
	)
	GeocodingRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_geocoding_requests_total",
			Help: "Total number of geocoding API requests.",
		},
		[]string{"endpoint"},
	)
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(SessionTransitionsCounter)
		prometheus.MustRegister(ActiveSubscriptionsGauge)
		prometheus.MustRegister(ProfileLoadDuration)
		prometheus.MustRegister(NotificationsSentCounter)
		prometheus.MustRegister(GeocodingRequestsCounter)
	})
}

func StartMetricsServer(port int) {

	register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), mux))
	}()
}
