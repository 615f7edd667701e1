package reports

import (
	"context"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"go.uber.org/zap"
)

// Sweeper is the in-process fallback for deployments without an external
// cron: it ticks hourly on the hour and runs every report type. Each
// subscriber's own DueAt filter decides who actually gets mail.
type Sweeper struct {
	composer *Composer
	logger   *zap.Logger
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(composer *Composer, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		composer: composer,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *Sweeper) Start() {
	go s.loop()
}

// Stop shuts the loop down and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) loop() {
	defer close(s.done)

	for {
		next := nextHour(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.stop:
			timer.Stop()
			return
		case now := <-timer.C:
			s.sweep(now)
		}
	}
}

func (s *Sweeper) sweep(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, reportType := range []string{
		entity.ReportTypeCommission,
		entity.ReportTypeWeeklyInventory,
		entity.ReportTypeSmartCheck,
	} {
		result, err := s.composer.Run(ctx, &RunRequest{Type: reportType, Now: now})
		if err != nil {
			s.logger.Error("sweep run failed",
				zap.String("type", reportType),
				zap.Error(err))
			continue
		}
		if result.Sent > 0 || len(result.Errors) > 0 {
			s.logger.Info("sweep run",
				zap.String("type", reportType),
				zap.Int("sent", result.Sent),
				zap.Int("errors", len(result.Errors)))
		}
	}
}

func nextHour(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}
