package service

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-substitution-api/internal/dto"
	"github.com/noah-isme/sma-substitution-api/internal/models"
)

type liveBoardReader interface {
	Snapshot() models.LiveBoard
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Engine    *Engine
	Plans     planReader
	Clock     *SchoolClock
	LiveBoard liveBoardReader
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// DashboardService composes the front-page summary of today.
type DashboardService struct {
	engine  *Engine
	plans   planReader
	clock   *SchoolClock
	board   liveBoardReader
	metrics *MetricsService
	logger  *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		engine:  params.Engine,
		plans:   params.Plans,
		clock:   params.Clock,
		board:   params.LiveBoard,
		metrics: params.Metrics,
		logger:  logger,
	}
}

// Summary reports today's load, substitutions and the latest live board.
func (s *DashboardService) Summary(context.Context) (*dto.DashboardResponse, error) {
	tt := s.engine.Timetable()
	idx := s.engine.Index()
	today := s.clock.CurrentDay(tt.DayNames())
	period := s.clock.CurrentPeriod()
	plan := s.plans.Get(today)

	classesToday := 0
	if day, ok := tt.Day(today); ok {
		for _, row := range day.Classes {
			classesToday += lo.CountBy(row.Slots, func(slot models.TimetableSlot) bool {
				return slot.Teachers.Kind != models.TeacherKindNone
			})
		}
	}

	resp := &dto.DashboardResponse{
		Today:               today,
		CurrentPeriod:       period,
		ClassesToday:        classesToday,
		ActiveTeachersToday: len(idx.ActiveTeachers(today)),
		TotalTeachers:       len(idx.TeacherNames()),
		TotalClasses:        len(tt.ClassNames),
		SubstitutionsToday:  plan.Plan.Count(),
		AbsentToday:         plan.AbsentTeachers,
		System:              s.metrics.Snapshot(),
	}
	if p, ok := s.engine.period(period - 1); ok {
		resp.PeriodName = p.Name
		resp.PeriodTime = p.Time
	}
	if s.board != nil {
		resp.LiveBoard = s.board.Snapshot()
	}
	return resp, nil
}
