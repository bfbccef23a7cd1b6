// Package service runs background maintenance for the memory engine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/metrics"
)

// consolidateTimeout bounds a single scheduled consolidation run.
const consolidateTimeout = 2 * time.Minute

// Scheduler runs consolidation on a cron schedule for a fixed set of
// namespaces. Runs are idempotent, so an overlapping or repeated run is
// harmless.
type Scheduler struct {
	cron         *cron.Cron
	consolidator *memory.Consolidator
	namespaces   []string
	collector    *metrics.Collector
	logger       *slog.Logger
}

// NewScheduler creates a scheduler that consolidates each namespace on the
// given cron spec. Supports 5-field cron expressions and descriptors like
// "@every 6h".
func NewScheduler(
	consolidator *memory.Consolidator,
	spec string,
	namespaces []string,
	collector *metrics.Collector,
	logger *slog.Logger,
) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:         cron.New(),
		consolidator: consolidator,
		namespaces:   namespaces,
		collector:    collector,
		logger:       logger,
	}

	if _, err := s.cron.AddFunc(spec, s.runAll); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("consolidation scheduler started", "namespaces", s.namespaces)
	s.cron.Start()
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("consolidation scheduler stopped")
}

// runAll consolidates every configured namespace. A failure in one namespace
// does not block the others.
func (s *Scheduler) runAll() {
	for _, namespace := range s.namespaces {
		s.runOne(namespace)
	}
}

func (s *Scheduler) runOne(namespace string) {
	ctx, cancel := context.WithTimeout(context.Background(), consolidateTimeout)
	defer cancel()

	start := time.Now()
	written, err := s.consolidator.Consolidate(ctx, namespace)
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpConsolidate, time.Since(start))
	}
	if err != nil {
		s.logger.Error("scheduled consolidation failed",
			"namespace", namespace, "written_before_error", written, "error", err)
		return
	}
	s.logger.Info("scheduled consolidation complete",
		"namespace", namespace, "reflections_written", written)
}
