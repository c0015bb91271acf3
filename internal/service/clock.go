package service

import (
	"strings"
	"time"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

type periodWindow struct {
	start int
	end   int
}

// defaultWindows are used when the header rows carry no parseable time ranges.
var defaultWindows = []periodWindow{
	{8*60 + 30, 9*60 + 10},
	{9*60 + 10, 9*60 + 50},
	{9*60 + 50, 10*60 + 30},
	{10*60 + 30, 11*60 + 10},
	{11*60 + 30, 12*60 + 10},
	{12*60 + 10, 12*60 + 50},
	{12*60 + 50, 13*60 + 30},
	{13*60 + 30, 14*60 + 10},
}

// SchoolClock maps wall-clock time in the school's timezone onto school days and periods.
type SchoolClock struct {
	loc     *time.Location
	windows []periodWindow
	now     func() time.Time
}

// NewSchoolClock derives period windows from the timetable header. A nil location means UTC.
func NewSchoolClock(periods []models.Period, loc *time.Location) *SchoolClock {
	if loc == nil {
		loc = time.UTC
	}
	windows := make([]periodWindow, 0, len(periods))
	for _, p := range periods {
		w, ok := parseWindow(p.Time)
		if !ok {
			windows = nil
			break
		}
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		windows = defaultWindows
	}
	return &SchoolClock{loc: loc, windows: windows, now: time.Now}
}

func parseWindow(label string) (periodWindow, bool) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return periodWindow{}, false
	}
	start, err := time.Parse("3:04 PM", strings.TrimSpace(parts[0]))
	if err != nil {
		return periodWindow{}, false
	}
	end, err := time.Parse("3:04 PM", strings.TrimSpace(parts[1]))
	if err != nil {
		return periodWindow{}, false
	}
	return periodWindow{
		start: start.Hour()*60 + start.Minute(),
		end:   end.Hour()*60 + end.Minute(),
	}, true
}

// Now returns the current time in the school's timezone.
func (c *SchoolClock) Now() time.Time {
	return c.now().In(c.loc)
}

// CurrentDay names today among days. Sunday counts as Monday; a day missing from the timetable falls back
// to Monday, or to the first loaded day when Monday is absent too.
func (c *SchoolClock) CurrentDay(days []string) string {
	today := c.Now().Weekday()
	name := today.String()
	if today == time.Sunday {
		name = time.Monday.String()
	}
	for _, d := range days {
		if d == name {
			return d
		}
	}
	for _, d := range days {
		if d == time.Monday.String() {
			return d
		}
	}
	if len(days) > 0 {
		return days[0]
	}
	return time.Monday.String()
}

// CurrentPeriod returns the 1-based period running now. Window bounds are inclusive. Before school it is
// the first period, after school the last one, and inside a break the period that follows it.
func (c *SchoolClock) CurrentPeriod() int {
	now := c.Now()
	minutes := now.Hour()*60 + now.Minute()

	for i, w := range c.windows {
		if minutes >= w.start && minutes <= w.end {
			return i + 1
		}
	}
	if minutes < c.windows[0].start {
		return 1
	}
	for i, w := range c.windows {
		if minutes < w.start {
			return i + 1
		}
	}
	return len(c.windows)
}
