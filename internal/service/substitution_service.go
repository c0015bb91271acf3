package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-substitution-api/internal/dto"
	"github.com/noah-isme/sma-substitution-api/internal/models"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
)

type planStore interface {
	Get(day string) models.SubstitutionPlan
	Update(day string, fn func(current models.SubstitutionPlan) (models.SubstitutionPlan, error)) (models.SubstitutionPlan, error)
	Clear(day string) models.SubstitutionPlan
}

type freeTeacherCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// SubstitutionService generates, stores and queries substitution plans.
type SubstitutionService struct {
	engine    *Engine
	store     planStore
	cache     freeTeacherCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewSubstitutionService wires the planner. cache and metrics may be nil.
func NewSubstitutionService(engine *Engine, store planStore, cache freeTeacherCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *SubstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubstitutionService{
		engine:    engine,
		store:     store,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Engine exposes the planning engine.
func (s *SubstitutionService) Engine() *Engine {
	return s.engine
}

// Plan returns the committed plan of day with its vacancy report.
func (s *SubstitutionService) Plan(_ context.Context, day string) (*dto.PlanResponse, error) {
	resolved, err := s.engine.ResolveDay(day)
	if err != nil {
		return nil, err
	}
	plan := s.store.Get(resolved)
	return s.planResponse(plan, s.engine.Assignments(resolved, plan)), nil
}

// Generate covers the vacancies of the given absentees on top of the day's stored plan. Substitutes at
// other slots are kept and the absentee list is replaced. Invalid input leaves the stored plan untouched.
func (s *SubstitutionService) Generate(ctx context.Context, day string, req dto.GeneratePlanRequest) (*dto.PlanResponse, error) {
	resolved, err := s.engine.ResolveDay(day)
	if err != nil {
		return nil, err
	}

	req.AbsentTeachers = normalizeNames(req.AbsentTeachers)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "select at least one absent teacher")
	}

	var assignments []models.Assignment
	start := time.Now()
	committed, err := s.store.Update(resolved, func(current models.SubstitutionPlan) (models.SubstitutionPlan, error) {
		var grid models.PlanGrid
		grid, assignments = s.engine.BuildPlan(resolved, req.AbsentTeachers, current.Plan)
		return models.SubstitutionPlan{Day: resolved, Plan: grid, AbsentTeachers: req.AbsentTeachers}, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store substitution plan")
	}
	duration := time.Since(start)

	resp := s.planResponse(committed, assignments)
	s.metrics.ObservePlan(resolved, resp.Summary.Vacancies, resp.Summary.Unassigned, duration)
	s.invalidate(ctx, resolved)

	s.logger.Info("substitution plan generated",
		zap.String("day", resolved),
		zap.Strings("absent", req.AbsentTeachers),
		zap.Int("vacancies", resp.Summary.Vacancies),
		zap.Int("unassigned", resp.Summary.Unassigned),
		zap.String("revision", committed.Revision),
	)
	return resp, nil
}

// Reset clears the day's plan while keeping its absentee list.
func (s *SubstitutionService) Reset(ctx context.Context, day string) (*dto.PlanResponse, error) {
	resolved, err := s.engine.ResolveDay(day)
	if err != nil {
		return nil, err
	}
	cleared := s.store.Clear(resolved)
	s.invalidate(ctx, resolved)
	s.logger.Info("substitution plan reset", zap.String("day", resolved), zap.Strings("absent", cleared.AbsentTeachers))
	return s.planResponse(cleared, s.engine.Assignments(resolved, cleared)), nil
}

// FreeTeachers answers who may cover a 1-based period. With WithPlan the day's stored absentees and
// plan join the context; otherwise only the supplied absentees are considered.
func (s *SubstitutionService) FreeTeachers(ctx context.Context, query dto.FreeTeachersQuery) (*dto.FreeTeachersResponse, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid free teacher query")
	}
	day, err := s.engine.ResolveDay(query.Day)
	if err != nil {
		return nil, false, err
	}
	period := query.Period - 1
	if err := s.engine.ValidatePeriod(period); err != nil {
		return nil, false, err
	}

	absent := normalizeNames(query.Absent)
	plan := models.PlanGrid{}
	if query.WithPlan {
		stored := s.store.Get(day)
		absent = lo.Uniq(append(stored.AbsentTeachers, absent...))
		plan = stored.Plan
	}

	key := FreeTeachersKey(day, period, absent, plan)
	var cached dto.FreeTeachersResponse
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("free teacher cache lookup failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	resp := &dto.FreeTeachersResponse{
		Day:      day,
		Period:   query.Period,
		Absent:   absent,
		Teachers: s.engine.FreeTeachers(day, period, absent, plan),
	}
	if p, ok := s.engine.period(period); ok {
		resp.PeriodName = p.Name
		resp.PeriodTime = p.Time
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
			s.logger.Warn("free teacher cache store failed", zap.String("day", day), zap.Int("period", query.Period), zap.Error(err))
		}
	}
	return resp, false, nil
}

func (s *SubstitutionService) invalidate(ctx context.Context, day string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, FreeTeachersPattern(day)); err != nil {
		s.logger.Warn("free teacher cache invalidation failed", zap.String("day", day), zap.Error(err))
	}
}

func (s *SubstitutionService) planResponse(plan models.SubstitutionPlan, assignments []models.Assignment) *dto.PlanResponse {
	summary := dto.PlanSummary{Vacancies: len(assignments)}
	for _, a := range assignments {
		if a.Status == models.AssignmentAssigned {
			summary.Assigned++
		} else {
			summary.Unassigned++
		}
	}
	resp := &dto.PlanResponse{
		Day:            plan.Day,
		AbsentTeachers: plan.AbsentTeachers,
		Plan:           plan.Plan,
		Assignments:    assignments,
		Summary:        summary,
		Revision:       plan.Revision,
	}
	if !plan.UpdatedAt.IsZero() {
		updated := plan.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// normalizeNames trims names, drops blanks and keeps the first occurrence of duplicates.
func normalizeNames(names []string) []string {
	trimmed := lo.FilterMap(names, func(name string, _ int) (string, bool) {
		name = strings.TrimSpace(name)
		return name, name != ""
	})
	return lo.Uniq(trimmed)
}
