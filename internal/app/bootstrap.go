package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/repository"
	"github.com/noah-isme/sma-substitution-api/internal/seed"
	"github.com/noah-isme/sma-substitution-api/internal/service"
	"github.com/noah-isme/sma-substitution-api/pkg/config"
	"github.com/noah-isme/sma-substitution-api/pkg/database"
)

// TimetableSource produces the weekly timetable at start-up.
type TimetableSource interface {
	Name() string
	Load(ctx context.Context) (*models.Timetable, error)
}

type sourceLoadObserver interface {
	ObserveSourceLoad(source string, duration time.Duration)
}

// LoadRules returns the availability rules from path, or the bundled rules when path is empty.
func LoadRules(path string) (models.AvailabilityRules, error) {
	if strings.TrimSpace(path) == "" {
		return repository.ParseRules(seed.Rules)
	}
	return repository.LoadRulesFile(path)
}

// OpenSource resolves a TIMETABLE_SOURCE value. The returned closer releases any connection the source holds.
func OpenSource(ctx context.Context, source string, db config.DatabaseConfig, corrections []models.Correction) (TimetableSource, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", config.SourceEmbedded:
		return repository.NewEmbeddedTimetableSource(seed.Timetable, corrections), noop, nil
	case config.SourcePostgres:
		conn, err := database.NewPostgres(ctx, db)
		if err != nil {
			return nil, noop, fmt.Errorf("connect timetable database: %w", err)
		}
		return repository.NewPostgresTimetableSource(conn, corrections), func() { _ = conn.Close() }, nil
	}

	path := strings.TrimSpace(source)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return repository.NewXLSXTimetableSource(path, corrections), noop, nil
	}
	return repository.NewFileTimetableSource(path, corrections), noop, nil
}

// LoadEngine reads the rules and the timetable and builds the engine every service shares.
func LoadEngine(ctx context.Context, cfg config.TimetableConfig, db config.DatabaseConfig, metrics sourceLoadObserver, logger *zap.Logger) (*service.Engine, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, "", fmt.Errorf("load rules: %w", err)
	}

	source, closeSource, err := OpenSource(ctx, cfg.Source, db, rules.Corrections)
	if err != nil {
		return nil, "", err
	}
	defer closeSource()

	start := time.Now()
	tt, err := source.Load(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load timetable from %s: %w", source.Name(), err)
	}
	if len(tt.Days) == 0 || tt.PeriodCount() == 0 {
		return nil, "", fmt.Errorf("timetable from %s is empty", source.Name())
	}
	duration := time.Since(start)
	if metrics != nil {
		metrics.ObserveSourceLoad(source.Name(), duration)
	}

	engine := service.NewEngine(tt, rules)
	logger.Info("timetable loaded",
		zap.String("source", source.Name()),
		zap.Int("days", len(tt.Days)),
		zap.Int("periods", tt.PeriodCount()),
		zap.Int("classes", len(tt.ClassNames)),
		zap.Int("teachers", len(engine.Index().TeacherNames())),
		zap.Duration("duration", duration),
	)
	return engine, source.Name(), nil
}
