package httpclient

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentedCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	fail := true
	next := SenderFunc(func(context.Context, string, string, map[string]string, string) (Response, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return StaticResponse{Status: 200}, nil
	})
	sender := Instrumented(next, m)

	if _, err := sender.Send(context.Background(), "GET", "http://x", nil, ""); err == nil {
		t.Fatalf("expected error")
	}
	fail = false
	if _, err := sender.Send(context.Background(), "GET", "http://x", nil, ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if want, have := 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "error")); want != have {
		t.Errorf("want %v, have %v", want, have)
	}
	if want, have := 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "success")); want != have {
		t.Errorf("want %v, have %v", want, have)
	}
	if want, have := 2, testutil.CollectAndCount(m.Duration); want != have {
		t.Errorf("want %v duration series, have %v", want, have)
	}
}

func TestInstrumentedNilMetricsPassesThrough(t *testing.T) {
	next := SenderFunc(func(context.Context, string, string, map[string]string, string) (Response, error) {
		return StaticResponse{Status: 204}, nil
	})
	if got := Instrumented(next, nil); got == nil {
		t.Fatalf("expected sender")
	}
}

func TestNewMetricsRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first NewMetrics: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
