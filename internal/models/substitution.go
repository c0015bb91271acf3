package models

import (
	"sort"
	"time"
)

// Commitment is a regular teaching duty occupying one period of a teacher's day.
type Commitment struct {
	Subject   string `json:"subject"`
	ClassName string `json:"className"`
}

// Vacancy is a slot left uncovered because its regular teacher is absent.
type Vacancy struct {
	ClassName       string `json:"className"`
	PeriodIndex     int    `json:"periodIndex"`
	Subject         string `json:"subject"`
	OriginalTeacher string `json:"originalTeacher"`
}

// PlanGrid maps class name -> period index -> substitute teacher.
type PlanGrid map[string]map[int]string

// Get returns the substitute assigned to a slot.
func (g PlanGrid) Get(className string, period int) (string, bool) {
	periods, ok := g[className]
	if !ok {
		return "", false
	}
	teacher, ok := periods[period]
	return teacher, ok
}

// Set assigns teacher to the slot.
func (g PlanGrid) Set(className string, period int, teacher string) {
	periods, ok := g[className]
	if !ok {
		periods = make(map[int]string)
		g[className] = periods
	}
	periods[period] = teacher
}

// Delete removes a slot assignment, dropping the class entry once empty.
func (g PlanGrid) Delete(className string, period int) {
	periods, ok := g[className]
	if !ok {
		return
	}
	delete(periods, period)
	if len(periods) == 0 {
		delete(g, className)
	}
}

// IsSubstituting reports whether teacher already covers some class at period.
func (g PlanGrid) IsSubstituting(teacher string, period int) bool {
	for _, periods := range g {
		if periods[period] == teacher {
			return true
		}
	}
	return false
}

// Count returns the number of assigned slots.
func (g PlanGrid) Count() int {
	total := 0
	for _, periods := range g {
		total += len(periods)
	}
	return total
}

// Clone deep-copies the grid.
func (g PlanGrid) Clone() PlanGrid {
	out := make(PlanGrid, len(g))
	for className, periods := range g {
		copied := make(map[int]string, len(periods))
		for period, teacher := range periods {
			copied[period] = teacher
		}
		out[className] = copied
	}
	return out
}

// PlanEntry is one flattened grid assignment.
type PlanEntry struct {
	ClassName   string `json:"className"`
	PeriodIndex int    `json:"periodIndex"`
	Teacher     string `json:"teacher"`
}

// Entries flattens the grid ordered by class then period.
func (g PlanGrid) Entries() []PlanEntry {
	entries := make([]PlanEntry, 0, g.Count())
	for className, periods := range g {
		for period, teacher := range periods {
			entries = append(entries, PlanEntry{ClassName: className, PeriodIndex: period, Teacher: teacher})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ClassName != entries[j].ClassName {
			return entries[i].ClassName < entries[j].ClassName
		}
		return entries[i].PeriodIndex < entries[j].PeriodIndex
	})
	return entries
}

// SubstitutionPlan is the committed substitution state of one day.
type SubstitutionPlan struct {
	Day            string    `json:"day"`
	Plan           PlanGrid  `json:"plan"`
	AbsentTeachers []string  `json:"absentTeachers"`
	Revision       string    `json:"revision,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Clone deep-copies the plan so callers cannot mutate stored state.
func (p SubstitutionPlan) Clone() SubstitutionPlan {
	out := p
	out.Plan = p.Plan.Clone()
	out.AbsentTeachers = append([]string{}, p.AbsentTeachers...)
	return out
}

// IsAbsent reports whether teacher is listed absent for the plan's day.
func (p SubstitutionPlan) IsAbsent(teacher string) bool {
	for _, name := range p.AbsentTeachers {
		if name == teacher {
			return true
		}
	}
	return false
}

// AssignmentStatus tells whether a vacancy received a substitute.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "ASSIGNED"
	AssignmentUnassigned AssignmentStatus = "UNASSIGNED"
)

// UnassignedLabel is rendered in place of a substitute for uncovered vacancies.
const UnassignedLabel = "--"

// Assignment pairs a vacancy with its substitute, if any.
type Assignment struct {
	Vacancy
	PeriodName string           `json:"periodName,omitempty"`
	PeriodTime string           `json:"periodTime,omitempty"`
	Substitute *string          `json:"substitute"`
	Status     AssignmentStatus `json:"status"`
}

// SubstituteLabel renders the substitute or the unassigned placeholder.
func (a Assignment) SubstituteLabel() string {
	if a.Substitute == nil {
		return UnassignedLabel
	}
	return *a.Substitute
}

// FreeTeacher is a substitute candidate with the day's regular workload.
type FreeTeacher struct {
	Name     string `json:"name"`
	Workload int    `json:"workload"`
}
