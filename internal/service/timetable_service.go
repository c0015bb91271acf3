package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-substitution-api/internal/dto"
	"github.com/noah-isme/sma-substitution-api/internal/models"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
)

type planReader interface {
	Get(day string) models.SubstitutionPlan
}

// TimetableService renders read-only views of the timetable with the stored substitutes overlaid.
type TimetableService struct {
	engine *Engine
	plans  planReader
	source string
}

// NewTimetableService constructs the view service. source names where the timetable was loaded from.
func NewTimetableService(engine *Engine, plans planReader, source string) *TimetableService {
	return &TimetableService{engine: engine, plans: plans, source: source}
}

// Overview lists days, periods, classes and teachers.
func (s *TimetableService) Overview(context.Context) (*dto.TimetableOverview, error) {
	tt := s.engine.Timetable()
	idx := s.engine.Index()
	teachers := lo.Map(idx.TeacherNames(), func(name string, _ int) dto.TeacherSummary {
		return dto.TeacherSummary{Name: name, WeeklyPeriods: idx.WeeklyPeriods(name)}
	})
	return &dto.TimetableOverview{
		Source:   s.source,
		Days:     tt.DayNames(),
		Periods:  tt.Periods,
		Classes:  append([]string{}, tt.ClassNames...),
		Teachers: teachers,
	}, nil
}

// Day returns the grid of one day in class order.
func (s *TimetableService) Day(_ context.Context, day string) (*dto.DayView, error) {
	resolved, err := s.engine.ResolveDay(day)
	if err != nil {
		return nil, err
	}
	tt := s.engine.Timetable()
	grid, _ := tt.Day(resolved)
	plan := s.plans.Get(resolved)

	view := &dto.DayView{
		Day:            resolved,
		Periods:        tt.Periods,
		AbsentTeachers: plan.AbsentTeachers,
		Classes:        make([]dto.ClassDayRow, 0, len(tt.ClassNames)),
	}
	for _, className := range tt.ClassNames {
		row, ok := grid.Class(className)
		if !ok {
			continue
		}
		view.Classes = append(view.Classes, dto.ClassDayRow{
			ClassName: className,
			Cells:     cellViews(row.Slots, plan.Plan, className),
		})
	}
	return view, nil
}

// Class returns one class across every loaded day.
func (s *TimetableService) Class(_ context.Context, className string) (*dto.ClassView, error) {
	tt := s.engine.Timetable()
	resolved, ok := lo.Find(tt.ClassNames, func(name string) bool {
		return strings.EqualFold(name, strings.TrimSpace(className))
	})
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %q is not in the timetable", className))
	}

	view := &dto.ClassView{ClassName: resolved, Periods: tt.Periods, Days: make([]dto.ClassWeekRow, 0, len(tt.Days))}
	for _, day := range tt.Days {
		row, ok := day.Class(resolved)
		if !ok {
			continue
		}
		plan := s.plans.Get(day.Day)
		view.Days = append(view.Days, dto.ClassWeekRow{Day: day.Day, Cells: cellViews(row.Slots, plan.Plan, resolved)})
	}
	return view, nil
}

// Teacher returns a teacher's week: own classes, classes covered by substitutes and substitution duties.
func (s *TimetableService) Teacher(_ context.Context, name string) (*dto.TeacherView, error) {
	idx := s.engine.Index()
	teacher := strings.TrimSpace(name)
	if !idx.Has(teacher) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %q is not in the timetable", teacher))
	}
	tt := s.engine.Timetable()

	view := &dto.TeacherView{
		Name:          teacher,
		WeeklyPeriods: idx.WeeklyPeriods(teacher),
		Subjects:      idx.Subjects(teacher),
		Days:          make([]dto.TeacherDay, 0, len(tt.Days)),
		Duties:        make([]dto.SubstitutionDuty, 0),
	}
	for _, day := range tt.DayNames() {
		plan := s.plans.Get(day)
		schedule := idx.Schedule(teacher, day)
		row := dto.TeacherDay{Day: day, Workload: idx.Workload(teacher, day), Periods: make([]dto.TeacherPeriod, tt.PeriodCount())}

		for period := range row.Periods {
			cell := dto.TeacherPeriod{PeriodIndex: period}
			if period < len(schedule) && schedule[period] != nil {
				own := *schedule[period]
				cell.Own = &own
				_, cell.SubstitutedOut = plan.Plan.Get(own.ClassName, period)
			}
			if duty, ok := s.duty(day, teacher, period, plan.Plan); ok {
				cell.Duty = &duty
				view.Duties = append(view.Duties, duty)
			}
			row.Periods[period] = cell
		}
		view.Days = append(view.Days, row)
	}
	return view, nil
}

func (s *TimetableService) duty(day, teacher string, period int, plan models.PlanGrid) (dto.SubstitutionDuty, bool) {
	for _, entry := range plan.Entries() {
		if entry.PeriodIndex != period || entry.Teacher != teacher {
			continue
		}
		slot, ok := s.engine.Timetable().Slot(day, entry.ClassName, period)
		if !ok {
			return dto.SubstitutionDuty{}, false
		}
		return dto.SubstitutionDuty{
			Day:             day,
			ClassName:       entry.ClassName,
			PeriodIndex:     period,
			Subject:         slot.Subject,
			OriginalTeacher: strings.Join(slot.Teachers.Names, "/"),
		}, true
	}
	return dto.SubstitutionDuty{}, false
}

func cellViews(slots []models.TimetableSlot, plan models.PlanGrid, className string) []dto.CellView {
	cells := make([]dto.CellView, 0, len(slots))
	for _, slot := range slots {
		cell := dto.CellView{
			PeriodIndex: slot.PeriodIndex,
			Subject:     slot.Subject,
			Kind:        slot.Teachers.Kind,
			Teachers:    append([]string{}, slot.Teachers.Names...),
		}
		if substitute, ok := plan.Get(className, slot.PeriodIndex); ok {
			cell.Substitute = &substitute
		}
		cells = append(cells, cell)
	}
	return cells
}
