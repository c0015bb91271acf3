package dto

import "github.com/noah-isme/sma-substitution-api/internal/models"

// TeacherSummary lists a teacher with their weekly regular load.
type TeacherSummary struct {
	Name          string `json:"name"`
	WeeklyPeriods int    `json:"weeklyPeriods"`
}

// TimetableOverview describes what the loaded timetable contains.
type TimetableOverview struct {
	Source   string           `json:"source"`
	Days     []string         `json:"days"`
	Periods  []models.Period  `json:"periods"`
	Classes  []string         `json:"classes"`
	Teachers []TeacherSummary `json:"teachers"`
}

// CellView is one timetable cell with the substitute covering it, if any.
type CellView struct {
	PeriodIndex int                `json:"periodIndex"`
	Subject     string             `json:"subject"`
	Kind        models.TeacherKind `json:"kind"`
	Teachers    []string           `json:"teachers"`
	Substitute  *string            `json:"substitute,omitempty"`
}

// ClassDayRow is a class line of the day view.
type ClassDayRow struct {
	ClassName string     `json:"className"`
	Cells     []CellView `json:"cells"`
}

// DayView is the full grid of one day with substitutes overlaid.
type DayView struct {
	Day            string          `json:"day"`
	Periods        []models.Period `json:"periods"`
	AbsentTeachers []string        `json:"absentTeachers"`
	Classes        []ClassDayRow   `json:"classes"`
}

// ClassWeekRow is one day of the class view.
type ClassWeekRow struct {
	Day   string     `json:"day"`
	Cells []CellView `json:"cells"`
}

// ClassView is a class's week with substitutes overlaid.
type ClassView struct {
	ClassName string          `json:"className"`
	Periods   []models.Period `json:"periods"`
	Days      []ClassWeekRow  `json:"days"`
}

// SubstitutionDuty is a slot the teacher covers for an absent colleague.
type SubstitutionDuty struct {
	Day             string `json:"day"`
	ClassName       string `json:"className"`
	PeriodIndex     int    `json:"periodIndex"`
	Subject         string `json:"subject"`
	OriginalTeacher string `json:"originalTeacher"`
}

// TeacherPeriod is one period of a teacher's day. SubstitutedOut marks an own class covered by someone else.
type TeacherPeriod struct {
	PeriodIndex    int                `json:"periodIndex"`
	Own            *models.Commitment `json:"own,omitempty"`
	SubstitutedOut bool               `json:"substitutedOut"`
	Duty           *SubstitutionDuty  `json:"duty,omitempty"`
}

// TeacherDay is one day row of the teacher view.
type TeacherDay struct {
	Day      string          `json:"day"`
	Workload int             `json:"workload"`
	Periods  []TeacherPeriod `json:"periods"`
}

// TeacherView is a teacher's week including substitution duties.
type TeacherView struct {
	Name          string             `json:"name"`
	WeeklyPeriods int                `json:"weeklyPeriods"`
	Subjects      []string           `json:"subjects"`
	Days          []TeacherDay       `json:"days"`
	Duties        []SubstitutionDuty `json:"duties"`
}
