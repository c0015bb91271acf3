package repository

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

// ErrNoPeriods is returned when a source never declares a period header row.
var ErrNoPeriods = errors.New("timetable has no period header")

var classNumberPattern = regexp.MustCompile(`(\d+)`)

const unnumberedClass = 999

// timetableBuilder assembles a Timetable from header and class rows regardless of source format.
type timetableBuilder struct {
	corrections []models.Correction
	periods     []models.Period
	days        []models.DayTimetable
	classSeen   map[string]struct{}
	classOrder  []string
}

func newTimetableBuilder(corrections []models.Correction) *timetableBuilder {
	return &timetableBuilder{corrections: corrections, classSeen: make(map[string]struct{})}
}

// setHeader records period columns from the first header row. Later headers are ignored.
func (b *timetableBuilder) setHeader(cells []string) {
	if len(b.periods) > 0 {
		return
	}
	periods := make([]models.Period, 0, len(cells))
	for i, cell := range cells {
		name, timeRange := splitHeaderCell(cell)
		if name == "" {
			name = fmt.Sprintf("Period %d", i+1)
		}
		periods = append(periods, models.Period{Index: i, Name: name, Time: timeRange})
	}
	b.periods = periods
}

func (b *timetableBuilder) setPeriods(periods []models.Period) {
	if len(b.periods) > 0 {
		return
	}
	b.periods = periods
}

// startDay opens a day block. A repeated day replaces the earlier block.
func (b *timetableBuilder) startDay(day string) {
	for i := range b.days {
		if b.days[i].Day == day {
			b.days[i].Classes = nil
			return
		}
	}
	b.days = append(b.days, models.DayTimetable{Day: day})
}

// addRow stores one class line. Cells beyond the declared period count are dropped.
func (b *timetableBuilder) addRow(day, className string, cells []string) {
	className = strings.TrimSpace(className)
	if className == "" || len(b.periods) == 0 {
		return
	}
	var target *models.DayTimetable
	for i := range b.days {
		if b.days[i].Day == day {
			target = &b.days[i]
			break
		}
	}
	if target == nil {
		b.startDay(day)
		target = &b.days[len(b.days)-1]
	}

	if len(cells) > len(b.periods) {
		cells = cells[:len(b.periods)]
	}
	slots := make([]models.TimetableSlot, 0, len(cells))
	for period, raw := range cells {
		corrected := applyCorrections(raw, b.corrections)
		subject, teachers := models.ParseCell(corrected)
		slots = append(slots, models.TimetableSlot{
			Day:         day,
			ClassName:   className,
			PeriodIndex: period,
			Subject:     subject,
			Teachers:    teachers,
			Raw:         strings.TrimSpace(raw),
		})
	}

	row := models.ClassRow{ClassName: className, Slots: slots}
	if existing, ok := target.Class(className); ok {
		*existing = row
	} else {
		target.Classes = append(target.Classes, row)
	}

	if _, seen := b.classSeen[className]; !seen {
		b.classSeen[className] = struct{}{}
		b.classOrder = append(b.classOrder, className)
	}
}

func (b *timetableBuilder) build() (*models.Timetable, error) {
	if len(b.periods) == 0 {
		return nil, ErrNoPeriods
	}
	if len(b.days) == 0 {
		return nil, errors.New("timetable has no day blocks")
	}
	classNames := append([]string{}, b.classOrder...)
	sortClassNames(classNames)
	return &models.Timetable{Days: b.days, Periods: b.periods, ClassNames: classNames}, nil
}

func splitHeaderCell(cell string) (string, string) {
	normalized := strings.ReplaceAll(cell, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "<br>", "\n")
	parts := strings.SplitN(normalized, "\n", 2)
	name := strings.TrimSpace(parts[0])
	timeRange := ""
	if len(parts) > 1 {
		timeRange = strings.TrimSpace(parts[1])
	}
	return name, timeRange
}

// applyCorrections rewrites "(wrong)" teacher groups to "(right)", or removes them when right is empty.
func applyCorrections(cell string, corrections []models.Correction) string {
	for _, c := range corrections {
		if c.Match == "" {
			continue
		}
		replacement := ""
		if c.Replacement != "" {
			replacement = "(" + c.Replacement + ")"
		}
		cell = strings.ReplaceAll(cell, "("+c.Match+")", replacement)
	}
	return cell
}

// sortClassNames orders classes by their first number, then by name; unnumbered classes go last.
func sortClassNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := classNumber(names[i]), classNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
}

func classNumber(name string) int {
	match := classNumberPattern.FindString(name)
	if match == "" {
		return unnumberedClass
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return unnumberedClass
	}
	return n
}

// canonicalDay maps a case-insensitive day label onto the school day name.
func canonicalDay(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, day := range models.SchoolDays {
		if strings.EqualFold(day, label) {
			return day, true
		}
	}
	return "", false
}
