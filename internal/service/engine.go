package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
)

// Engine bundles the immutable planning inputs: the timetable, its schedule index and the availability rules.
// It is built once at start-up and shared by every service.
type Engine struct {
	timetable *models.Timetable
	index     *ScheduleIndex
	rules     models.AvailabilityRules
}

// NewEngine indexes the timetable.
func NewEngine(tt *models.Timetable, rules models.AvailabilityRules) *Engine {
	if rules.EarliestPeriod == nil {
		rules.EarliestPeriod = map[string]int{}
	}
	return &Engine{timetable: tt, index: BuildScheduleIndex(tt), rules: rules}
}

// Timetable returns the loaded timetable.
func (e *Engine) Timetable() *models.Timetable { return e.timetable }

// Index returns the schedule index.
func (e *Engine) Index() *ScheduleIndex { return e.index }

// Rules returns the availability rules.
func (e *Engine) Rules() models.AvailabilityRules { return e.rules }

// ResolveDay maps a case-insensitive day label to a loaded day name.
func (e *Engine) ResolveDay(day string) (string, error) {
	label := strings.TrimSpace(day)
	if label == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "day is required")
	}
	for _, name := range e.timetable.DayNames() {
		if strings.EqualFold(name, label) {
			return name, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("day %q is not in the timetable", label))
}

// ValidatePeriod checks a zero-based period index against the header.
func (e *Engine) ValidatePeriod(period int) error {
	if period < 0 || period >= e.timetable.PeriodCount() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period must be between 1 and %d", e.timetable.PeriodCount()))
	}
	return nil
}

// IsAvailable reports whether teacher may substitute at (day, period) given the absentees and the plan built so far.
func (e *Engine) IsAvailable(teacher, day string, period int, absent []string, plan models.PlanGrid) bool {
	if lo.Contains(absent, teacher) {
		return false
	}
	if e.rules.IsSpecial(teacher) {
		return false
	}
	if !e.rules.AllowsPeriod(teacher, period) {
		return false
	}
	if _, busy := e.index.Commitment(teacher, day, period); busy {
		return false
	}
	return !plan.IsSubstituting(teacher, period)
}

// FreeTeachers filters the canonical teacher list with IsAvailable and orders the survivors by
// ascending workload for day. Equal workloads keep canonical name order.
func (e *Engine) FreeTeachers(day string, period int, absent []string, plan models.PlanGrid) []models.FreeTeacher {
	candidates := lo.FilterMap(e.index.TeacherNames(), func(teacher string, _ int) (models.FreeTeacher, bool) {
		if !e.IsAvailable(teacher, day, period, absent, plan) {
			return models.FreeTeacher{}, false
		}
		return models.FreeTeacher{Name: teacher, Workload: e.index.Workload(teacher, day)}, true
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Workload < candidates[j].Workload
	})
	return candidates
}

// ExtractVacancies lists every slot left uncovered by the absentees, in absentee order and then by period.
func (e *Engine) ExtractVacancies(day string, absent []string) []models.Vacancy {
	vacancies := make([]models.Vacancy, 0)
	for _, teacher := range absent {
		for period, commitment := range e.index.Schedule(teacher, day) {
			if commitment == nil {
				continue
			}
			vacancies = append(vacancies, models.Vacancy{
				ClassName:       commitment.ClassName,
				PeriodIndex:     period,
				Subject:         commitment.Subject,
				OriginalTeacher: teacher,
			})
		}
	}
	return vacancies
}

// BuildPlan greedily covers each vacancy with the least-loaded free teacher, starting from a copy of base.
// Entries of base at vacancy slots are dropped first; every other entry is kept and counts against
// candidates at its period. Vacancies without a candidate stay unset and are reported as unassigned.
func (e *Engine) BuildPlan(day string, absent []string, base models.PlanGrid) (models.PlanGrid, []models.Assignment) {
	plan := base.Clone()
	vacancies := e.ExtractVacancies(day, absent)
	for _, vacancy := range vacancies {
		plan.Delete(vacancy.ClassName, vacancy.PeriodIndex)
	}
	assignments := make([]models.Assignment, 0, len(vacancies))

	for _, vacancy := range vacancies {
		assignment := models.Assignment{Vacancy: vacancy, Status: models.AssignmentUnassigned}
		if period, ok := e.period(vacancy.PeriodIndex); ok {
			assignment.PeriodName = period.Name
			assignment.PeriodTime = period.Time
		}

		candidates := e.FreeTeachers(day, vacancy.PeriodIndex, absent, plan)
		if len(candidates) > 0 {
			substitute := candidates[0].Name
			plan.Set(vacancy.ClassName, vacancy.PeriodIndex, substitute)
			assignment.Substitute = &substitute
			assignment.Status = models.AssignmentAssigned
		}
		assignments = append(assignments, assignment)
	}
	return plan, assignments
}

// Assignments reconstructs the vacancy report for a stored plan.
func (e *Engine) Assignments(day string, plan models.SubstitutionPlan) []models.Assignment {
	vacancies := e.ExtractVacancies(day, plan.AbsentTeachers)
	assignments := make([]models.Assignment, 0, len(vacancies))
	for _, vacancy := range vacancies {
		assignment := models.Assignment{Vacancy: vacancy, Status: models.AssignmentUnassigned}
		if period, ok := e.period(vacancy.PeriodIndex); ok {
			assignment.PeriodName = period.Name
			assignment.PeriodTime = period.Time
		}
		if substitute, ok := plan.Plan.Get(vacancy.ClassName, vacancy.PeriodIndex); ok {
			assignment.Substitute = &substitute
			assignment.Status = models.AssignmentAssigned
		}
		assignments = append(assignments, assignment)
	}
	return assignments
}

func (e *Engine) period(index int) (models.Period, bool) {
	if index < 0 || index >= len(e.timetable.Periods) {
		return models.Period{}, false
	}
	return e.timetable.Periods[index], true
}
