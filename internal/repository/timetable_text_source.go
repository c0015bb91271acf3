package repository

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

const periodHeaderMarker = "Period 1"

// TextTimetableSource reads the day-block text format: a day name line, a
// "Class,Period 1<br>8:30 AM - 9:10 AM,..." header, then one comma separated row per class.
type TextTimetableSource struct {
	path        string
	data        []byte
	corrections []models.Correction
}

// NewFileTimetableSource reads the timetable from a file on disk.
func NewFileTimetableSource(path string, corrections []models.Correction) *TextTimetableSource {
	return &TextTimetableSource{path: path, corrections: corrections}
}

// NewEmbeddedTimetableSource parses an in-memory document.
func NewEmbeddedTimetableSource(data []byte, corrections []models.Correction) *TextTimetableSource {
	return &TextTimetableSource{data: data, corrections: corrections}
}

// Name describes the source for logs.
func (s *TextTimetableSource) Name() string {
	if s.path != "" {
		return "file:" + s.path
	}
	return "embedded"
}

// Load parses the document.
func (s *TextTimetableSource) Load(ctx context.Context) (*models.Timetable, error) {
	data := s.data
	if s.path != "" {
		raw, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read timetable %s: %w", s.path, err)
		}
		data = raw
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseDayBlocks(data, s.corrections)
}

// ParseDayBlocks parses the day-block text format. A day line with no data lines
// is skipped; a day whose first line is not a period header is kept without classes.
func ParseDayBlocks(data []byte, corrections []models.Correction) (*models.Timetable, error) {
	builder := newTimetableBuilder(corrections)

	var (
		currentDay string
		dayLines   []string
	)
	flush := func() {
		if currentDay == "" || len(dayLines) == 0 {
			return
		}
		builder.startDay(currentDay)
		if !strings.Contains(dayLines[0], periodHeaderMarker) {
			return
		}
		builder.setHeader(splitColumns(dayLines[0])[1:])
		for _, line := range dayLines[1:] {
			columns := splitColumns(line)
			builder.addRow(currentDay, columns[0], columns[1:])
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if day, ok := canonicalDay(line); ok {
			flush()
			currentDay = day
			dayLines = dayLines[:0]
			continue
		}
		if currentDay != "" {
			dayLines = append(dayLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan timetable: %w", err)
	}
	flush()

	return builder.build()
}

func splitColumns(line string) []string {
	columns := strings.Split(line, ",")
	for i := range columns {
		columns[i] = strings.TrimSpace(columns[i])
	}
	return columns
}
