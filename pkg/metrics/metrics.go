package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "photogallery"

	metricLabelHandler  = "handler"
	metricLabelStatus   = "status"
	metricLabelReason   = "reason"
	metricLabelPlatform = "platform"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// CapturesCompletedCounter count the number of photos added to the gallery
	CapturesCompletedCounter = newCounterVec(
		"captures_completed_count",
		"Number of captures that were stored and added to the gallery",
		metricLabelPlatform,
	)
	// CapturesFailedCounter count the number of captures that had an error
	CapturesFailedCounter = newCounterVec(
		"captures_failed_count",
		"Number of captures that failed, by reason",
		metricLabelReason,
	)
	// CaptureDuration observe the duration of each capture including storage
	CaptureDuration = newSummaryVec(
		"capture_duration_seconds",
		"Duration in seconds for each successful capture",
		metricLabelPlatform,
	)
	// LoadDuration observe the duration of loading the persisted photo list
	LoadDuration = newSummaryVec(
		"load_duration_seconds",
		"Duration in seconds for loading and rehydrating the photo list",
		metricLabelPlatform,
	)
	// PersistFailedCounter count the number of failed attempts to persist the photo list
	PersistFailedCounter = newCounterVec(
		"persist_failed_count",
		"Number of failures to store the photo list in the key-value store",
	)
	// ServiceRequestCounter count the number of requests for each handler
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus,
	)
	// ServiceRequestDuration observe the duration of requests for each handler
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to execute a handler and marshal its reponse",
		metricLabelHandler, metricLabelStatus,
	)
	// NumSubscribersGauge keep track of the number of open event streams
	NumSubscribersGauge = newGaugeVec(
		"num_event_streams_total",
		"Total number of currently open event streams",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
