package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

// XLSXTimetableSource reads a workbook with one sheet per school day. The first
// non-empty row of a sheet is the period header; each following row is a class.
type XLSXTimetableSource struct {
	path        string
	corrections []models.Correction
}

// NewXLSXTimetableSource constructs the workbook source.
func NewXLSXTimetableSource(path string, corrections []models.Correction) *XLSXTimetableSource {
	return &XLSXTimetableSource{path: path, corrections: corrections}
}

// Name describes the source for logs.
func (s *XLSXTimetableSource) Name() string {
	return "xlsx:" + s.path
}

// Load opens the workbook and parses every day sheet. Sheets that are not day names are skipped.
func (s *XLSXTimetableSource) Load(ctx context.Context) (*models.Timetable, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	return parseWorkbook(ctx, f, s.corrections)
}

func parseWorkbook(ctx context.Context, f *excelize.File, corrections []models.Correction) (*models.Timetable, error) {
	builder := newTimetableBuilder(corrections)
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		day, ok := canonicalDay(sheet)
		if !ok {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		builder.startDay(day)
		headerSeen := false
		for _, row := range rows {
			if isBlankRow(row) {
				continue
			}
			if !headerSeen {
				builder.setHeader(row[1:])
				headerSeen = true
				continue
			}
			builder.addRow(day, row[0], row[1:])
		}
	}
	return builder.build()
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
