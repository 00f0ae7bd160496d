package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/usagerelay/internal/domain"
	"github.com/kailas-cloud/usagerelay/internal/domain/snapshot"
	"github.com/kailas-cloud/usagerelay/internal/domain/usage"
	"github.com/kailas-cloud/usagerelay/internal/metrics"
)

// Service runs the fetch loop: one upstream call per interval, each outcome
// replacing the shared snapshot. A failed or panicking cycle never stops the loop.
type Service struct {
	fetcher  UsageFetcher
	store    SnapshotStore
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
	logger   *zap.Logger
}

// New creates a Service polling every interval.
func New(fetcher UsageFetcher, store SnapshotStore, interval time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		now:      time.Now,
		after:    time.After,
		logger:   logger,
	}
}

// WithTimeout bounds each fetch with its own deadline. Zero leaves it to the fetcher.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// WithClock replaces the time source and the wait between cycles.
func (s *Service) WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) *Service {
	if now != nil {
		s.now = now
	}
	if after != nil {
		s.after = after
	}
	return s
}

// Interval returns the wait between cycles.
func (s *Service) Interval() time.Duration { return s.interval }

// Run executes cycles until ctx is cancelled. The first cycle starts immediately.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("usage poller started", zap.Duration("interval", s.interval), zap.Duration("timeout", s.timeout))

	for {
		s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("usage poller stopped")
			return ctx.Err()
		case <-s.after(s.interval):
		}
	}
}

// RunOnce performs a single fetch cycle synchronously, stores the resulting
// snapshot and returns it.
func (s *Service) RunOnce(ctx context.Context) (snap *snapshot.Snapshot) {
	start := s.now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("fetch cycle panicked",
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			snap = snapshot.Failure(fmt.Sprintf("internal error: %v", r), s.now())
			s.store.Store(snap)
			metrics.Utilization.Reset()
			metrics.PollCyclesTotal.WithLabelValues(string(domain.OutcomeTransportError)).Inc()
		}
	}()

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := s.fetcher.FetchUsage(fetchCtx)

	var headline usage.Headline
	if err == nil {
		headline, err = usage.ParseHeadline(body)
		if err != nil {
			err = domain.NewTransportError(err)
		}
	}

	at := s.now()
	elapsed := at.Sub(start)
	outcome := domain.Classify(err)

	metrics.PollCyclesTotal.WithLabelValues(string(outcome)).Inc()
	metrics.PollDuration.Observe(elapsed.Seconds())

	if err != nil {
		snap = snapshot.Failure(err.Error(), at)
		s.store.Store(snap)
		metrics.Utilization.Reset()
		s.logFailure(outcome, err, elapsed)
		return snap
	}

	snap = snapshot.Success(body, at)
	s.store.Store(snap)

	metrics.LastSuccessTimestamp.Set(float64(at.Unix()))
	// only windows present in this payload are exported
	metrics.Utilization.Reset()
	for _, w := range usage.HeadlineWindows {
		if v, ok := headline.Utilization(w); ok {
			metrics.Utilization.WithLabelValues(string(w)).Set(v)
		}
	}

	s.logger.Info("usage fetched",
		zap.String("five_hour", headline.Format(usage.WindowFiveHour)),
		zap.String("seven_day", headline.Format(usage.WindowSevenDay)),
		zap.String("sonnet", headline.Format(usage.WindowSevenDaySonnet)),
		zap.Duration("duration", elapsed),
	)
	return snap
}

func (s *Service) logFailure(outcome domain.Outcome, err error, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("outcome", string(outcome)),
		zap.String("reason", err.Error()),
		zap.Duration("duration", elapsed),
	}
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		fields = append(fields, zap.String("hint", "copy a fresh sessionKey cookie from the browser into upstream.session_key"))
	case errors.Is(err, domain.ErrAccessDenied):
		fields = append(fields, zap.String("hint", "check upstream.org_id and upstream.session_key"))
	}
	s.logger.Warn("usage fetch failed", fields...)
}
