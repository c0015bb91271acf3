package models

import (
	"regexp"
	"strings"
)

// SchoolDays lists the day blocks recognised in a weekly timetable, in week order.
var SchoolDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var cellPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)$`)

// TeacherKind discriminates the teacher part of a timetable cell.
type TeacherKind string

const (
	TeacherKindNone     TeacherKind = "none"
	TeacherKindSingle   TeacherKind = "single"
	TeacherKindCoTaught TeacherKind = "coTaught"
)

// TeacherField is the teacher component of a cell: nobody, one teacher or several co-teachers.
type TeacherField struct {
	Kind  TeacherKind `json:"kind"`
	Names []string    `json:"names,omitempty"`
}

// Has reports whether name is one of the cell's teachers.
func (f TeacherField) Has(name string) bool {
	for _, n := range f.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Period describes one column of the day grid.
type Period struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Time  string `json:"time"`
}

// TimetableSlot is one (day, class, period) cell.
type TimetableSlot struct {
	Day         string       `json:"day"`
	ClassName   string       `json:"className"`
	PeriodIndex int          `json:"periodIndex"`
	Subject     string       `json:"subject"`
	Teachers    TeacherField `json:"teachers"`
	Raw         string       `json:"raw"`
}

// SubjectFor returns the subject taught by the k-th teacher of a co-taught cell.
// When the cell lists fewer subjects than teachers the first subject is used.
func (s TimetableSlot) SubjectFor(k int) string {
	subjects := splitTrim(s.Subject)
	if k >= 0 && k < len(subjects) && subjects[k] != "" {
		return subjects[k]
	}
	if len(subjects) > 0 {
		return subjects[0]
	}
	return s.Subject
}

// ParseCell splits a raw "Subject (Teacher)" cell. Cells without a teacher group are pure labels.
func ParseCell(raw string) (string, TeacherField) {
	cell := strings.TrimSpace(raw)
	match := cellPattern.FindStringSubmatch(cell)
	if match == nil {
		return cell, TeacherField{Kind: TeacherKindNone}
	}

	subject := strings.TrimSpace(match[1])
	names := make([]string, 0, 2)
	for _, name := range splitTrim(match[2]) {
		if name != "" {
			names = append(names, name)
		}
	}

	switch len(names) {
	case 0:
		return subject, TeacherField{Kind: TeacherKindNone}
	case 1:
		return subject, TeacherField{Kind: TeacherKindSingle, Names: names}
	default:
		return subject, TeacherField{Kind: TeacherKindCoTaught, Names: names}
	}
}

func splitTrim(raw string) []string {
	parts := strings.Split(raw, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ClassRow is one class line of a day block.
type ClassRow struct {
	ClassName string          `json:"className"`
	Slots     []TimetableSlot `json:"slots"`
}

// DayTimetable is the grid of a single school day.
type DayTimetable struct {
	Day     string     `json:"day"`
	Classes []ClassRow `json:"classes"`
}

// Class returns the row for className.
func (d *DayTimetable) Class(className string) (*ClassRow, bool) {
	for i := range d.Classes {
		if d.Classes[i].ClassName == className {
			return &d.Classes[i], true
		}
	}
	return nil, false
}

// Timetable is the parsed weekly timetable. It is immutable after load.
type Timetable struct {
	Days       []DayTimetable `json:"days"`
	Periods    []Period       `json:"periods"`
	ClassNames []string       `json:"classNames"`
}

// PeriodCount is the number of period columns declared by the header row.
func (t *Timetable) PeriodCount() int {
	return len(t.Periods)
}

// DayNames returns the loaded day names in timetable order.
func (t *Timetable) DayNames() []string {
	names := make([]string, 0, len(t.Days))
	for _, d := range t.Days {
		names = append(names, d.Day)
	}
	return names
}

// Day returns the grid of the named day.
func (t *Timetable) Day(day string) (*DayTimetable, bool) {
	for i := range t.Days {
		if t.Days[i].Day == day {
			return &t.Days[i], true
		}
	}
	return nil, false
}

// HasDay reports whether the day block was loaded.
func (t *Timetable) HasDay(day string) bool {
	_, ok := t.Day(day)
	return ok
}

// HasClass reports whether className appears on any day.
func (t *Timetable) HasClass(className string) bool {
	for _, name := range t.ClassNames {
		if name == className {
			return true
		}
	}
	return false
}

// Slot looks up a single cell.
func (t *Timetable) Slot(day, className string, period int) (TimetableSlot, bool) {
	d, ok := t.Day(day)
	if !ok {
		return TimetableSlot{}, false
	}
	row, ok := d.Class(className)
	if !ok || period < 0 || period >= len(row.Slots) {
		return TimetableSlot{}, false
	}
	return row.Slots[period], true
}
