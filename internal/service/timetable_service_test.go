package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-substitution-api/internal/dto"
	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/repository"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
	"github.com/noah-isme/sma-substitution-api/pkg/export"
)

func storeWithBinduPlan(t *testing.T, engine *Engine) *repository.PlanStore {
	t.Helper()
	store := repository.NewPlanStore(engine.Timetable().DayNames())
	plan, _ := engine.BuildPlan("Monday", []string{"Bindu"}, nil)
	store.Set("Monday", plan, []string{"Bindu"})
	return store
}

func TestTimetableOverview(t *testing.T) {
	engine := bundledEngine(t)
	svc := NewTimetableService(engine, repository.NewPlanStore(nil), "embedded")

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "embedded", overview.Source)
	assert.Len(t, overview.Days, 6)
	assert.Len(t, overview.Periods, 8)
	assert.Len(t, overview.Classes, 16)
	require.Len(t, overview.Teachers, 18)
	assert.Equal(t, dto.TeacherSummary{Name: "Anita", WeeklyPeriods: 42}, overview.Teachers[0])
}

func TestTimetableDayOverlaysSubstitutes(t *testing.T) {
	engine := bundledEngine(t)
	svc := NewTimetableService(engine, storeWithBinduPlan(t, engine), "embedded")

	view, err := svc.Day(context.Background(), "MONDAY")
	require.NoError(t, err)
	assert.Equal(t, "Monday", view.Day)
	assert.Equal(t, []string{"Bindu"}, view.AbsentTeachers)
	require.Len(t, view.Classes, 16)

	class1 := view.Classes[0]
	assert.Equal(t, "Class 1", class1.ClassName)
	require.NotNil(t, class1.Cells[0].Substitute)
	assert.Equal(t, "Rakesh", *class1.Cells[0].Substitute)
	assert.Nil(t, class1.Cells[6].Substitute)
	assert.Equal(t, []string{"Anjana"}, class1.Cells[6].Teachers)

	_, err = svc.Day(context.Background(), "Sunday")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTimetableClassView(t *testing.T) {
	engine := bundledEngine(t)
	svc := NewTimetableService(engine, storeWithBinduPlan(t, engine), "embedded")

	view, err := svc.Class(context.Background(), "class 12 arts")
	require.NoError(t, err)
	assert.Equal(t, "Class 12 Arts", view.ClassName)
	require.Len(t, view.Days, 6)

	friday := view.Days[4]
	assert.Equal(t, "Friday", friday.Day)
	assert.Equal(t, models.TeacherKindCoTaught, friday.Cells[2].Kind)
	assert.Equal(t, []string{"Prakash", "Pradhyuman"}, friday.Cells[2].Teachers)

	_, err = svc.Class(context.Background(), "Class 13")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTimetableTeacherView(t *testing.T) {
	engine := bundledEngine(t)
	svc := NewTimetableService(engine, storeWithBinduPlan(t, engine), "embedded")

	bindu, err := svc.Teacher(context.Background(), "Bindu")
	require.NoError(t, err)
	assert.Equal(t, 45, bindu.WeeklyPeriods)
	monday := bindu.Days[0]
	assert.Equal(t, 8, monday.Workload)
	require.NotNil(t, monday.Periods[0].Own)
	assert.True(t, monday.Periods[0].SubstitutedOut)
	assert.False(t, bindu.Days[1].Periods[0].SubstitutedOut)
	assert.Empty(t, bindu.Duties)

	rakesh, err := svc.Teacher(context.Background(), "Rakesh")
	require.NoError(t, err)
	require.Len(t, rakesh.Duties, 2)
	assert.Equal(t, dto.SubstitutionDuty{Day: "Monday", ClassName: "Class 1", PeriodIndex: 0, Subject: "EVS", OriginalTeacher: "Bindu"}, rakesh.Duties[0])
	require.NotNil(t, rakesh.Days[0].Periods[1].Duty)
	assert.Nil(t, rakesh.Days[0].Periods[2].Duty)

	_, err = svc.Teacher(context.Background(), "Gyan")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDashboardSummary(t *testing.T) {
	engine := bundledEngine(t)
	store := storeWithBinduPlan(t, engine)
	clock := fixedClock(t, engine.Timetable().Periods, "2026-10-11 11:20")
	board := NewLiveBoardService(engine, clock, time.Minute, nil, nil)
	svc := NewDashboardService(DashboardServiceParams{Engine: engine, Plans: store, Clock: clock, LiveBoard: board})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Monday", summary.Today)
	assert.Equal(t, 5, summary.CurrentPeriod)
	assert.Equal(t, "Period 5", summary.PeriodName)
	assert.Equal(t, 128, summary.ClassesToday)
	assert.Equal(t, 18, summary.ActiveTeachersToday)
	assert.Equal(t, 18, summary.TotalTeachers)
	assert.Equal(t, 16, summary.TotalClasses)
	assert.Equal(t, 8, summary.SubstitutionsToday)
	assert.Equal(t, []string{"Bindu"}, summary.AbsentToday)
	assert.Equal(t, []string{"Anjana", "Hemlata", "Rakesh", "Prakash"}, freeNames(summary.LiveBoard.FreeTeachers))
}

func TestExportPlanCSV(t *testing.T) {
	engine := bundledEngine(t)
	store := storeWithBinduPlan(t, engine)
	store.Update("Monday", func(current models.SubstitutionPlan) (models.SubstitutionPlan, error) {
		current.Plan.Delete("Class 2", 7)
		return current, nil
	})
	svc := NewExportService(engine, store, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC) }

	file, err := svc.Plan(context.Background(), "monday", models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "substitution_plan_monday_20261012_080000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 9)
	assert.Equal(t, []string{"Class", "Period", "Time", "Subject", "Absent Teacher", "Substitute"}, records[0])
	assert.Equal(t, []string{"Class 1", "Period 1", "8:30 AM - 9:10 AM", "EVS", "Bindu", "Rakesh"}, records[1])
	assert.Equal(t, "--", records[8][5])
}

func TestExportPlanPDF(t *testing.T) {
	engine := bundledEngine(t)
	svc := NewExportService(engine, storeWithBinduPlan(t, engine), nil, nil, nil)

	file, err := svc.Plan(context.Background(), "Monday", models.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

type failingCSV struct{}

func (failingCSV) Render(export.Dataset) ([]byte, error) { return nil, errors.New("disk full") }

func TestExportPlanErrors(t *testing.T) {
	engine := bundledEngine(t)
	svc := NewExportService(engine, storeWithBinduPlan(t, engine), nil, failingCSV{}, nil)

	_, err := svc.Plan(context.Background(), "Monday", models.ExportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	_, err = svc.Plan(context.Background(), "Monday", "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Plan(context.Background(), "Funday", models.ExportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	format, err := ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatPDF, format)
	format, err = ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, format)
	_, err = ParseExportFormat("docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
