package results

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	errTypeLabel           = "error_type"
	collectorEndpointLabel = "collector_endpoint"
)

var (
	resultSend = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smoke_test_result_send",
		Help: "The number of smoke test results sent to the collector.",
	}, []string{
		collectorEndpointLabel,
	})

	resultSendError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smoke_test_result_send_errors",
		Help: "The errors that occured while sending a smoke test result to the collector.",
	}, []string{
		collectorEndpointLabel,
		errTypeLabel,
	})

	resultSendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "smoke_test_result_send_latency",
		Help: "The time to send a smoke test result to the collector.",
	}, []string{
		collectorEndpointLabel,
	})
)

func instrumentResultLatency(endpoint string, start time.Time) {
	resultSendLatency.With(prometheus.Labels{
		collectorEndpointLabel: endpoint,
	}).Observe(time.Since(start).Seconds())
}

func instrumentResultSend(endpoint string) {
	resultSend.With(prometheus.Labels{
		collectorEndpointLabel: endpoint,
	}).Inc()
}

func instrumentResultSendError(endpoint string, err error) {
	resultSendError.
		With(prometheus.Labels{
			collectorEndpointLabel: endpoint,
			errTypeLabel:           errors.Type(err),
		}).
		Inc()
}
