package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/infra/config"
)

// Provider represents a telemetry provider handle. HTTP request metrics live
// in the transport middleware; the provider owns the domain-level collectors.
type Provider struct {
	notificationsCounter *prometheus.CounterVec
	deadlineScansCounter prometheus.Counter
}

// Attach registers the domain metric collectors and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddl",
		Name:      "notifications_dispatched_total",
		Help:      "Total number of notifications dispatched, partitioned by type and outcome",
	}, []string{"type", "outcome"})

	if err := prometheus.DefaultRegisterer.Register(notifications); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				notifications = existing
			} else {
				return nil, fmt.Errorf("existing notifications collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register notifications collector: %w", err)
		}
	}

	deadlineScans := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddl",
		Name:      "deadline_scans_total",
		Help:      "Total number of completed deadline reminder scans",
	})

	if err := prometheus.DefaultRegisterer.Register(deadlineScans); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				deadlineScans = existing
			} else {
				return nil, fmt.Errorf("existing deadline scans collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register deadline scans collector: %w", err)
		}
	}

	return &Provider{
		notificationsCounter: notifications,
		deadlineScansCounter: deadlineScans,
	}, nil
}

// NotificationsCounter exposes the notification dispatch metric.
func (p *Provider) NotificationsCounter() *prometheus.CounterVec {
	if p == nil {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "noop"}, []string{"type", "outcome"})
	}
	return p.notificationsCounter
}

// DeadlineScansCounter exposes the deadline scan metric.
func (p *Provider) DeadlineScansCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: "noop"})
	}
	return p.deadlineScansCounter
}
