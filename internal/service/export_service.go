package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
	"github.com/noah-isme/sma-substitution-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered plan ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the stored substitution plan of a day as CSV or PDF.
type ExportService struct {
	engine *Engine
	plans  planReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(engine *Engine, plans planReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{engine: engine, plans: plans, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ParseExportFormat validates a format label; empty means CSV.
func ParseExportFormat(raw string) (models.ExportFormat, error) {
	switch models.ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", models.ExportFormatCSV:
		return models.ExportFormatCSV, nil
	case models.ExportFormatPDF:
		return models.ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Plan renders the day's plan. Every vacancy is listed; uncovered ones show the unassigned placeholder.
func (s *ExportService) Plan(_ context.Context, day string, format models.ExportFormat) (*ExportFile, error) {
	resolved, err := s.engine.ResolveDay(day)
	if err != nil {
		return nil, err
	}
	plan := s.plans.Get(resolved)
	dataset := PlanDataset(s.engine.Assignments(resolved, plan))
	dataset.Title = fmt.Sprintf("Substitution Plan %s", resolved)
	if len(plan.AbsentTeachers) > 0 {
		dataset.Subtitle = "Absent: " + strings.Join(plan.AbsentTeachers, ", ")
	}

	var payload []byte
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render plan export")
	}

	s.logger.Debug("plan exported", zap.String("day", resolved), zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{
		Filename:    s.filename(resolved, format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

// PlanDataset flattens assignments into export rows.
func PlanDataset(assignments []models.Assignment) export.Dataset {
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, []string{a.ClassName, periodLabel(a), a.PeriodTime, a.Subject, a.OriginalTeacher, a.SubstituteLabel()})
	}
	return export.Dataset{
		Headers: []string{"Class", "Period", "Time", "Subject", "Absent Teacher", "Substitute"},
		Rows:    rows,
	}
}

func periodLabel(a models.Assignment) string {
	if a.PeriodName != "" {
		return a.PeriodName
	}
	return fmt.Sprintf("Period %d", a.PeriodIndex+1)
}

func (s *ExportService) filename(day string, format models.ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("substitution_plan_%s_%s.%s", strings.ToLower(day), timestamp, format)
}
