package httpclient

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by Instrumented senders.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics builds the request collectors and registers them with reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "apitransport",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "API requests sent, by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "apitransport",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Time spent waiting for API responses.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status_code"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Instrumented records request metrics around next.
func Instrumented(next Sender, m *Metrics) Sender {
	if m == nil {
		return next
	}
	return &instrumented{next: next, metrics: m}
}

type instrumented struct {
	next    Sender
	metrics *Metrics
}

func (i *instrumented) Send(ctx context.Context, method, url string, headers map[string]string, body string) (resp Response, err error) {
	defer func(begin time.Time) {
		outcome, code := "success", "none"
		if err != nil {
			outcome = "error"
		}
		if resp != nil {
			code = strconv.Itoa(resp.StatusCode())
		}
		i.metrics.Requests.WithLabelValues(method, outcome).Inc()
		i.metrics.Duration.WithLabelValues(code).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return i.next.Send(ctx, method, url, headers, body)
}
