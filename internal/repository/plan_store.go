package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

type dayPlan struct {
	mu   sync.RWMutex
	plan models.SubstitutionPlan
}

// PlanStore keeps one substitution plan per day in memory. Writes to a day are
// serialized by that day's lock; reads always receive copies.
type PlanStore struct {
	mu    sync.RWMutex
	days  map[string]*dayPlan
	clock func() time.Time
}

// NewPlanStore creates a store seeded with an empty plan for every day.
func NewPlanStore(days []string) *PlanStore {
	store := &PlanStore{days: make(map[string]*dayPlan, len(days)), clock: time.Now}
	for _, day := range days {
		store.days[day] = &dayPlan{plan: emptyPlan(day, nil)}
	}
	return store
}

func emptyPlan(day string, absent []string) models.SubstitutionPlan {
	return models.SubstitutionPlan{
		Day:            day,
		Plan:           models.PlanGrid{},
		AbsentTeachers: append([]string{}, absent...),
	}
}

func (s *PlanStore) entry(day string) *dayPlan {
	s.mu.RLock()
	e, ok := s.days[day]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.days[day]; ok {
		return e
	}
	e = &dayPlan{plan: emptyPlan(day, nil)}
	s.days[day] = e
	return e
}

// Get returns a copy of the day's plan; unknown days yield an empty plan.
func (s *PlanStore) Get(day string) models.SubstitutionPlan {
	s.mu.RLock()
	e, ok := s.days[day]
	s.mu.RUnlock()
	if !ok {
		return emptyPlan(day, nil)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.plan.Clone()
}

// Update runs fn under the day's write lock and commits its result wholesale.
// When fn fails nothing is committed.
func (s *PlanStore) Update(day string, fn func(current models.SubstitutionPlan) (models.SubstitutionPlan, error)) (models.SubstitutionPlan, error) {
	e := s.entry(day)
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.plan.Clone())
	if err != nil {
		return models.SubstitutionPlan{}, err
	}
	next.Day = day
	if next.Plan == nil {
		next.Plan = models.PlanGrid{}
	}
	if next.Revision == "" {
		next.Revision = uuid.NewString()
	}
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = s.clock().UTC()
	}
	e.plan = next.Clone()
	return next.Clone(), nil
}

// Set replaces the day's plan and absentee list.
func (s *PlanStore) Set(day string, plan models.PlanGrid, absent []string) models.SubstitutionPlan {
	committed, _ := s.Update(day, func(models.SubstitutionPlan) (models.SubstitutionPlan, error) {
		next := emptyPlan(day, absent)
		next.Plan = plan.Clone()
		return next, nil
	})
	return committed
}

// Clear empties the day's plan but keeps the absentee list.
func (s *PlanStore) Clear(day string) models.SubstitutionPlan {
	committed, _ := s.Update(day, func(current models.SubstitutionPlan) (models.SubstitutionPlan, error) {
		return emptyPlan(day, current.AbsentTeachers), nil
	})
	return committed
}
