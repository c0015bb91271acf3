package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

// LiveBoardService periodically recomputes who is free right now. It reads the engine only and never
// touches stored plans.
type LiveBoardService struct {
	engine   *Engine
	clock    *SchoolClock
	interval time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
	board    atomic.Pointer[models.LiveBoard]
}

// NewLiveBoardService builds the refresher. A non-positive interval defaults to 30s.
func NewLiveBoardService(engine *Engine, clock *SchoolClock, interval time.Duration, metrics *MetricsService, logger *zap.Logger) *LiveBoardService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveBoardService{engine: engine, clock: clock, interval: interval, metrics: metrics, logger: logger}
}

// Refresh recomputes and publishes the snapshot for the current day and period with an empty absentee and plan context.
func (s *LiveBoardService) Refresh() models.LiveBoard {
	day := s.clock.CurrentDay(s.engine.Timetable().DayNames())
	period := s.clock.CurrentPeriod()
	board := models.LiveBoard{
		Day:          day,
		Period:       period,
		FreeTeachers: s.engine.FreeTeachers(day, period-1, nil, models.PlanGrid{}),
		RefreshedAt:  s.clock.Now(),
	}
	if p, ok := s.engine.period(period - 1); ok {
		board.PeriodName = p.Name
		board.PeriodTime = p.Time
	}
	s.board.Store(&board)
	s.metrics.ObserveLiveBoardRefresh()
	return board
}

// Snapshot returns the last published board, computing one on first use.
func (s *LiveBoardService) Snapshot() models.LiveBoard {
	if board := s.board.Load(); board != nil {
		return *board
	}
	return s.Refresh()
}

// Run refreshes on every tick until ctx is cancelled.
func (s *LiveBoardService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Refresh()
	s.logger.Info("live board started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("live board stopped")
			return nil
		case <-ticker.C:
			board := s.Refresh()
			s.logger.Debug("live board refreshed",
				zap.String("day", board.Day),
				zap.Int("period", board.Period),
				zap.Int("free", len(board.FreeTeachers)),
			)
		}
	}
}
