package service

import (
	"sort"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

// ScheduleIndex maps (teacher, day) to the teacher's own commitments per period and daily workload.
// It is derived once from a timetable and never mutated.
type ScheduleIndex struct {
	periodCount int
	schedules   map[string]map[string][]*models.Commitment
	workload    map[string]map[string]int
	subjects    map[string][]string
	teachers    []string
}

// BuildScheduleIndex derives the index from every slot that names at least one teacher.
func BuildScheduleIndex(tt *models.Timetable) *ScheduleIndex {
	idx := &ScheduleIndex{
		periodCount: tt.PeriodCount(),
		schedules:   make(map[string]map[string][]*models.Commitment),
		workload:    make(map[string]map[string]int),
		subjects:    make(map[string][]string),
	}

	for _, day := range tt.Days {
		for _, row := range day.Classes {
			for _, slot := range row.Slots {
				if slot.Teachers.Kind == models.TeacherKindNone {
					continue
				}
				for k, teacher := range slot.Teachers.Names {
					idx.add(teacher, day.Day, slot.PeriodIndex, models.Commitment{
						Subject:   slot.SubjectFor(k),
						ClassName: row.ClassName,
					})
				}
			}
		}
	}

	idx.teachers = lo.Keys(idx.schedules)
	sort.Strings(idx.teachers)
	for teacher, subjects := range idx.subjects {
		sort.Strings(subjects)
		idx.subjects[teacher] = subjects
	}
	return idx
}

func (idx *ScheduleIndex) add(teacher, day string, period int, commitment models.Commitment) {
	if period < 0 || period >= idx.periodCount {
		return
	}
	days, ok := idx.schedules[teacher]
	if !ok {
		days = make(map[string][]*models.Commitment)
		idx.schedules[teacher] = days
		idx.workload[teacher] = make(map[string]int)
	}
	periods, ok := days[day]
	if !ok {
		periods = make([]*models.Commitment, idx.periodCount)
		days[day] = periods
	}
	c := commitment
	periods[period] = &c
	idx.workload[teacher][day]++

	if !lo.Contains(idx.subjects[teacher], commitment.Subject) {
		idx.subjects[teacher] = append(idx.subjects[teacher], commitment.Subject)
	}
}

// PeriodCount is the length of every schedule array.
func (idx *ScheduleIndex) PeriodCount() int {
	return idx.periodCount
}

// Schedule returns a copy of the teacher's per-period commitments for day; nil when the teacher has none.
func (idx *ScheduleIndex) Schedule(teacher, day string) []*models.Commitment {
	periods, ok := idx.schedules[teacher][day]
	if !ok {
		return nil
	}
	return append([]*models.Commitment(nil), periods...)
}

// Commitment returns the teacher's own class at period, if any.
func (idx *ScheduleIndex) Commitment(teacher, day string, period int) (models.Commitment, bool) {
	periods, ok := idx.schedules[teacher][day]
	if !ok || period < 0 || period >= len(periods) || periods[period] == nil {
		return models.Commitment{}, false
	}
	return *periods[period], true
}

// Workload is the number of regular periods the teacher teaches on day.
func (idx *ScheduleIndex) Workload(teacher, day string) int {
	return idx.workload[teacher][day]
}

// WeeklyPeriods sums the teacher's workload across all days.
func (idx *ScheduleIndex) WeeklyPeriods(teacher string) int {
	return lo.Sum(lo.Values(idx.workload[teacher]))
}

// Subjects lists the distinct subjects the teacher teaches, sorted.
func (idx *ScheduleIndex) Subjects(teacher string) []string {
	return append([]string{}, idx.subjects[teacher]...)
}

// TeacherNames is the canonical byte-wise sorted teacher list.
func (idx *ScheduleIndex) TeacherNames() []string {
	return append([]string{}, idx.teachers...)
}

// Has reports whether the teacher appears anywhere in the timetable.
func (idx *ScheduleIndex) Has(teacher string) bool {
	_, ok := idx.schedules[teacher]
	return ok
}

// ActiveTeachers lists teachers with at least one period on day, in canonical order.
func (idx *ScheduleIndex) ActiveTeachers(day string) []string {
	return lo.Filter(idx.teachers, func(teacher string, _ int) bool {
		return idx.workload[teacher][day] > 0
	})
}
