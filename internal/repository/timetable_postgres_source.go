package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

type periodRow struct {
	PeriodIndex int    `db:"period_index"`
	Name        string `db:"name"`
	TimeRange   string `db:"time_range"`
}

type slotRow struct {
	Day         string `db:"day"`
	ClassName   string `db:"class_name"`
	PeriodIndex int    `db:"period_index"`
	Cell        string `db:"cell"`
}

// PostgresTimetableSource loads the timetable from timetable_periods and timetable_slots.
type PostgresTimetableSource struct {
	db          *sqlx.DB
	corrections []models.Correction
}

// NewPostgresTimetableSource creates a database backed source.
func NewPostgresTimetableSource(db *sqlx.DB, corrections []models.Correction) *PostgresTimetableSource {
	return &PostgresTimetableSource{db: db, corrections: corrections}
}

// Name describes the source for logs.
func (s *PostgresTimetableSource) Name() string {
	return "postgres"
}

// Load reads periods and raw cells, then runs them through the shared cell parser.
func (s *PostgresTimetableSource) Load(ctx context.Context) (*models.Timetable, error) {
	var periods []periodRow
	if err := s.db.SelectContext(ctx, &periods, `SELECT period_index, name, time_range FROM timetable_periods ORDER BY period_index`); err != nil {
		return nil, fmt.Errorf("select timetable periods: %w", err)
	}
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	var slots []slotRow
	if err := s.db.SelectContext(ctx, &slots, `SELECT day, class_name, period_index, cell FROM timetable_slots ORDER BY day_order, class_order, period_index`); err != nil {
		return nil, fmt.Errorf("select timetable slots: %w", err)
	}

	builder := newTimetableBuilder(s.corrections)
	headers := make([]models.Period, 0, len(periods))
	for i, p := range periods {
		headers = append(headers, models.Period{Index: i, Name: p.Name, Time: p.TimeRange})
	}
	builder.setPeriods(headers)

	type rowKey struct{ day, class string }
	var (
		order []rowKey
		cells = make(map[rowKey][]string)
	)
	for _, slot := range slots {
		day, ok := canonicalDay(slot.Day)
		if !ok || slot.PeriodIndex < 0 || slot.PeriodIndex >= len(headers) {
			continue
		}
		key := rowKey{day: day, class: slot.ClassName}
		row, seen := cells[key]
		if !seen {
			order = append(order, key)
			row = make([]string, len(headers))
		}
		row[slot.PeriodIndex] = slot.Cell
		cells[key] = row
	}

	started := make(map[string]bool)
	for _, key := range order {
		if !started[key.day] {
			builder.startDay(key.day)
			started[key.day] = true
		}
		builder.addRow(key.day, key.class, cells[key])
	}

	return builder.build()
}
