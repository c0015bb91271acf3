package repository

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/seed"
)

func seedCorrections(t *testing.T) []models.Correction {
	t.Helper()
	rules, err := ParseRules(seed.Rules)
	require.NoError(t, err)
	return rules.Corrections
}

func TestParseDayBlocksBundledTimetable(t *testing.T) {
	tt, err := ParseDayBlocks(seed.Timetable, seedCorrections(t))
	require.NoError(t, err)

	assert.Equal(t, models.SchoolDays, tt.DayNames())
	require.Equal(t, 8, tt.PeriodCount())
	assert.Equal(t, models.Period{Index: 0, Name: "Period 1", Time: "8:30 AM - 9:10 AM"}, tt.Periods[0])
	assert.Equal(t, "01:30 PM - 02:10 PM", tt.Periods[7].Time)
	assert.Equal(t, []string{
		"Class 1", "Class 2", "Class 3", "Class 4", "Class 5", "Class 6", "Class 7", "Class 8", "Class 9", "Class 10",
		"Class 11 Arts", "Class 11 Commerce", "Class 11 Science",
		"Class 12 Arts", "Class 12 Commerce", "Class 12 Science",
	}, tt.ClassNames)

	slot, ok := tt.Slot("Monday", "Class 1", 0)
	require.True(t, ok)
	assert.Equal(t, "EVS", slot.Subject)
	assert.Equal(t, models.TeacherField{Kind: models.TeacherKindSingle, Names: []string{"Bindu"}}, slot.Teachers)

	coTaught, ok := tt.Slot("Friday", "Class 12 Arts", 2)
	require.True(t, ok)
	assert.Equal(t, models.TeacherKindCoTaught, coTaught.Teachers.Kind)
	assert.Equal(t, []string{"Prakash", "Pradhyuman"}, coTaught.Teachers.Names)
	assert.Equal(t, "Political Science", coTaught.SubjectFor(1))
}

func TestParseDayBlocksAppliesCorrections(t *testing.T) {
	doc := []byte(`Monday
Class,Period 1<br>8:30 AM - 9:10 AM,Period 2<br>9:10 AM - 9:50 AM
Class 5,Maths (Nindika),Library (Sir)
Class 6,Grammar (english)
`)

	tt, err := ParseDayBlocks(doc, seedCorrections(t))
	require.NoError(t, err)

	maths, _ := tt.Slot("Monday", "Class 5", 0)
	assert.Equal(t, []string{"Nidhika"}, maths.Teachers.Names)
	assert.Equal(t, "Maths (Nindika)", maths.Raw)

	library, _ := tt.Slot("Monday", "Class 5", 1)
	assert.Equal(t, models.TeacherKindNone, library.Teachers.Kind)
	assert.Equal(t, "Library", library.Subject)

	grammar, _ := tt.Slot("Monday", "Class 6", 0)
	assert.Equal(t, []string{"English"}, grammar.Teachers.Names)
}

func TestParseDayBlocksEdgeCases(t *testing.T) {
	doc := []byte(`stray line before any day
Monday
Class,Period 1,Period 2
Class 1,EVS (Bindu),Maths (Kusum),Extra (Nobody)
,Orphan (Maya)
Tuesday
Class 1,EVS (Bindu)
`)

	tt, err := ParseDayBlocks(doc, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Monday", "Tuesday"}, tt.DayNames())
	monday, _ := tt.Day("Monday")
	require.Len(t, monday.Classes, 1)
	assert.Len(t, monday.Classes[0].Slots, 2)

	tuesday, _ := tt.Day("Tuesday")
	assert.Empty(t, tuesday.Classes)
}

func TestParseDayBlocksSkipsDaysWithoutData(t *testing.T) {
	doc := []byte(`Monday
Tuesday
Class,Period 1,Period 2
Class 1,EVS (Bindu),Maths (Kusum)
Wednesday
`)

	tt, err := ParseDayBlocks(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tuesday"}, tt.DayNames())
	_, ok := tt.Day("Monday")
	assert.False(t, ok)
}

func TestParseDayBlocksWithoutHeader(t *testing.T) {
	_, err := ParseDayBlocks([]byte("Monday\nClass 1,EVS (Bindu)\n"), nil)
	assert.ErrorIs(t, err, ErrNoPeriods)
}

func TestFileTimetableSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week.txt")
	require.NoError(t, os.WriteFile(path, seed.Timetable, 0o600))

	src := NewFileTimetableSource(path, nil)
	tt, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tt.Days, 6)
	assert.Equal(t, "file:"+path, src.Name())

	_, err = NewFileTimetableSource(filepath.Join(t.TempDir(), "missing.txt"), nil).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestXLSXTimetableSource(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "monday"))
	require.NoError(t, f.SetSheetRow("monday", "A1", &[]interface{}{"Class", "Period 1\n8:30 AM - 9:10 AM", "Period 2\n9:10 AM - 9:50 AM"}))
	require.NoError(t, f.SetSheetRow("monday", "A3", &[]interface{}{"Class 2", "Maths (Anita)", "Hindi (Nindika)"}))
	require.NoError(t, f.SetSheetRow("monday", "A4", &[]interface{}{"Class 1", "EVS (Bindu)", "Economics/Political Science (Prakash/Pradhyuman)"}))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr("Notes", "A1", "ignored"))

	path := filepath.Join(t.TempDir(), "week.xlsx")
	require.NoError(t, f.SaveAs(path))

	tt, err := NewXLSXTimetableSource(path, seedCorrections(t)).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Monday"}, tt.DayNames())
	assert.Equal(t, "Period 2", tt.Periods[1].Name)
	assert.Equal(t, "9:10 AM - 9:50 AM", tt.Periods[1].Time)
	assert.Equal(t, []string{"Class 1", "Class 2"}, tt.ClassNames)

	hindi, ok := tt.Slot("Monday", "Class 2", 1)
	require.True(t, ok)
	assert.Equal(t, []string{"Nidhika"}, hindi.Teachers.Names)

	coTaught, ok := tt.Slot("Monday", "Class 1", 1)
	require.True(t, ok)
	assert.Equal(t, models.TeacherKindCoTaught, coTaught.Teachers.Kind)
}

func newTimetableDBMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPostgresTimetableSourceLoad(t *testing.T) {
	db, mock, cleanup := newTimetableDBMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT period_index, name, time_range FROM timetable_periods ORDER BY period_index")).
		WillReturnRows(sqlmock.NewRows([]string{"period_index", "name", "time_range"}).
			AddRow(0, "Period 1", "8:30 AM - 9:10 AM").
			AddRow(1, "Period 2", "9:10 AM - 9:50 AM"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day, class_name, period_index, cell FROM timetable_slots ORDER BY day_order, class_order, period_index")).
		WillReturnRows(sqlmock.NewRows([]string{"day", "class_name", "period_index", "cell"}).
			AddRow("Monday", "Class 1", 0, "EVS (Bindu)").
			AddRow("Monday", "Class 1", 1, "Maths (Kusum)").
			AddRow("Monday", "Class 2", 1, "Hindi (Bindu)").
			AddRow("Tuesday", "Class 1", 0, "Maths (Nindika)").
			AddRow("Funday", "Class 1", 0, "Games (Rakesh)").
			AddRow("Tuesday", "Class 1", 7, "Out of range (Maya)"))

	tt, err := NewPostgresTimetableSource(db, seedCorrections(t)).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Monday", "Tuesday"}, tt.DayNames())
	empty, ok := tt.Slot("Monday", "Class 2", 0)
	require.True(t, ok)
	assert.Equal(t, models.TeacherKindNone, empty.Teachers.Kind)
	hindi, _ := tt.Slot("Monday", "Class 2", 1)
	assert.Equal(t, []string{"Bindu"}, hindi.Teachers.Names)
	maths, _ := tt.Slot("Tuesday", "Class 1", 0)
	assert.Equal(t, []string{"Nidhika"}, maths.Teachers.Names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTimetableSourceWithoutPeriods(t *testing.T) {
	db, mock, cleanup := newTimetableDBMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT period_index, name, time_range FROM timetable_periods").
		WillReturnRows(sqlmock.NewRows([]string{"period_index", "name", "time_range"}))

	_, err := NewPostgresTimetableSource(db, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoPeriods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(seed.Rules)
	require.NoError(t, err)

	assert.Equal(t, []string{"Gyan", "Phy"}, rules.SpecialTeachers)
	assert.Equal(t, map[string]int{"Anjana": 4}, rules.EarliestPeriod)
	assert.Equal(t, []models.Correction{
		{Match: "Nindika", Replacement: "Nidhika"},
		{Match: "Sir", Replacement: ""},
		{Match: "english", Replacement: "English"},
	}, rules.Corrections)

	_, err = ParseRules([]byte("earliestPeriod:\n  Maya: -1\n"))
	assert.Error(t, err)

	empty, err := ParseRules([]byte("specialTeachers: []\n"))
	require.NoError(t, err)
	assert.NotNil(t, empty.EarliestPeriod)
}
