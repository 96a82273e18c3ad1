package usecase

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
)

// DeadlineChecker periodically scans for tasks approaching their deadline
// and notifies their assignees.
type DeadlineChecker struct {
	tasks    port.TaskRepository
	sink     port.NotificationSink
	logger   *zap.Logger
	interval time.Duration
	scans    prometheus.Counter
}

// WithMetrics attaches the scan counter.
func (c *DeadlineChecker) WithMetrics(scans prometheus.Counter) *DeadlineChecker {
	c.scans = scans
	return c
}

// NewDeadlineChecker constructs a DeadlineChecker. A non-positive interval
// defaults to fifteen minutes.
func NewDeadlineChecker(tasks port.TaskRepository, sink port.NotificationSink, log *zap.Logger, interval time.Duration) *DeadlineChecker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &DeadlineChecker{
		tasks:    tasks,
		sink:     sink,
		logger:   log,
		interval: interval,
	}
}

// Run blocks, scanning once immediately and then at each interval, until the
// context is canceled.
func (c *DeadlineChecker) Run(ctx context.Context) {
	c.logger.Info("deadline checker started", zap.Duration("interval", c.interval))

	c.scan(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("deadline checker stopped")
			return
		case <-ticker.C:
			c.scan(ctx)
		}
	}
}

func (c *DeadlineChecker) scan(ctx context.Context) {
	if c.scans != nil {
		defer c.scans.Inc()
	}

	now := time.Now().UTC()
	tasks, err := c.tasks.ListDueBetween(ctx, now, now.Add(DeadlineHorizon))
	if err != nil {
		c.logger.Error("failed to list tasks approaching deadline", zap.Error(err))
		return
	}
	if len(tasks) == 0 {
		return
	}

	dispatcher := NewDispatcher(c.sink, "", nil)
	if err := dispatcher.CheckAllDeadlines(ctx, tasks, now); err != nil {
		c.logger.Warn("some deadline reminders were not delivered", zap.Error(err))
	}
	c.logger.Info("deadline scan completed", zap.Int("tasks", len(tasks)))
}
