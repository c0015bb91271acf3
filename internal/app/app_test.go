package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/seed"
	"github.com/noah-isme/sma-substitution-api/internal/service"
	"github.com/noah-isme/sma-substitution-api/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:       config.EnvDevelopment,
		Port:      0,
		APIPrefix: "/api/v1",
		Cache:     config.CacheConfig{Enabled: true, Backend: "memory", TTL: time.Minute},
		JWT:       config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "sma-substitution-api"},
		Metrics:   config.MetricsConfig{Enabled: true},
		Timetable: config.TimetableConfig{Source: config.SourceEmbedded, Timezone: "UTC"},
		LiveBoard: config.LiveBoardConfig{Enabled: true, Interval: time.Minute},
	}
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func call(t *testing.T, h http.Handler, method, target, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	return a
}

func TestSubstitutionFlow(t *testing.T) {
	a := newTestApp(t, testConfig())
	h := a.Router()

	rec, env := call(t, h, http.MethodPost, "/api/v1/substitutions/monday/generate", `{"absentTeachers":["Bindu"]}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Monday", env.Data["day"])
	summary := env.Data["summary"].(map[string]interface{})
	assert.Equal(t, float64(8), summary["vacancies"])
	assert.Equal(t, float64(0), summary["unassigned"])
	plan := env.Data["plan"].(map[string]interface{})
	class1 := plan["Class 1"].(map[string]interface{})
	assert.Equal(t, "Rakesh", class1["0"])
	assert.Equal(t, "Anjana", class1["4"])

	rec, env = call(t, h, http.MethodGet, "/api/v1/availability/free?day=Monday&period=1&withPlan=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, env.Meta["cache_hit"])
	assert.Empty(t, env.Data["teachers"], "Rakesh covers period 1 and nobody else is free")

	_, env = call(t, h, http.MethodGet, "/api/v1/availability/free?day=Monday&period=1&withPlan=true", "", "")
	assert.Equal(t, true, env.Meta["cache_hit"])

	rec, env = call(t, h, http.MethodDelete, "/api/v1/substitutions/Monday", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Bindu"}, env.Data["absentTeachers"])
	assert.Empty(t, env.Data["plan"])

	_, env = call(t, h, http.MethodGet, "/api/v1/availability/free?day=Monday&period=1&withPlan=true", "", "")
	assert.Equal(t, false, env.Meta["cache_hit"])
	teachers := env.Data["teachers"].([]interface{})
	require.Len(t, teachers, 1)
	assert.Equal(t, "Rakesh", teachers[0].(map[string]interface{})["name"])
}

func TestSubstitutionErrors(t *testing.T) {
	h := newTestApp(t, testConfig()).Router()

	rec, env := call(t, h, http.MethodPost, "/api/v1/substitutions/Monday/generate", `{"absentTeachers":[]}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "select at least one absent teacher", env.Error["message"])

	rec, _ = call(t, h, http.MethodPost, "/api/v1/substitutions/Funday/generate", `{"absentTeachers":["Bindu"]}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = call(t, h, http.MethodGet, "/api/v1/availability/free?day=Monday&period=9", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = call(t, h, http.MethodGet, "/api/v1/substitutions/Monday", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMutationsRequireRoleWhenAuthEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	h := newTestApp(t, cfg).Router()

	auth := service.NewAuthService(nil, nil, service.AuthConfig{AccessTokenSecret: "test-secret", Issuer: "sma-substitution-api"})
	coordinator, err := auth.IssueToken(service.IssueTokenRequest{Subject: "office", Role: models.RoleCoordinator})
	require.NoError(t, err)
	viewer, err := auth.IssueToken(service.IssueTokenRequest{Subject: "board", Role: models.RoleViewer})
	require.NoError(t, err)

	body := `{"absentTeachers":["Bindu"]}`
	rec, _ := call(t, h, http.MethodPost, "/api/v1/substitutions/Monday/generate", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = call(t, h, http.MethodPost, "/api/v1/substitutions/Monday/generate", body, viewer.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = call(t, h, http.MethodPost, "/api/v1/substitutions/Monday/generate", body, coordinator.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(t, h, http.MethodGet, "/api/v1/substitutions/Monday", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadOnlyRoutes(t *testing.T) {
	a := newTestApp(t, testConfig())
	h := a.Router()

	rec, env := call(t, h, http.MethodGet, "/api/v1/timetable", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "embedded", env.Data["source"])

	rec, _ = call(t, h, http.MethodGet, "/api/v1/timetable/teachers/Bindu", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = call(t, h, http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(16), env.Data["totalClasses"])

	rec, _ = call(t, h, http.MethodGet, "/api/v1/substitutions/Monday/export?format=csv", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rec, _ = call(t, h, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/v1/timetable",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `timetable_source_load_seconds_count{source="embedded"} 1`)
}

func TestRunStopsOnCancel(t *testing.T) {
	a := newTestApp(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down")
	}
}

func TestLoadEngineFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timetable.txt")
	require.NoError(t, os.WriteFile(path, seed.Timetable, 0o600))
	metrics := service.NewMetricsService()

	engine, source, err := LoadEngine(context.Background(), config.TimetableConfig{Source: path}, config.DatabaseConfig{}, metrics, nil)
	require.NoError(t, err)
	assert.Equal(t, "file:"+path, source)
	assert.Equal(t, 8, engine.Timetable().PeriodCount())
	assert.Equal(t, uint64(1), metrics.Snapshot().SourceLoadCount)
}

func TestLoadEngineErrors(t *testing.T) {
	_, _, err := LoadEngine(context.Background(), config.TimetableConfig{Source: filepath.Join(t.TempDir(), "missing.txt")}, config.DatabaseConfig{}, nil, nil)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	_, _, err = LoadEngine(context.Background(), config.TimetableConfig{Source: empty}, config.DatabaseConfig{}, nil, nil)
	assert.Error(t, err)

	_, _, err = LoadEngine(context.Background(), config.TimetableConfig{RulesFile: filepath.Join(t.TempDir(), "rules.yaml")}, config.DatabaseConfig{}, nil, nil)
	assert.ErrorContains(t, err, "load rules")
}

func TestOpenSourceSelectsImplementation(t *testing.T) {
	source, closer, err := OpenSource(context.Background(), "", config.DatabaseConfig{}, nil)
	require.NoError(t, err)
	defer closer()
	assert.Equal(t, "embedded", source.Name())

	source, _, err = OpenSource(context.Background(), "week.XLSX", config.DatabaseConfig{}, nil)
	require.NoError(t, err)
	assert.Contains(t, source.Name(), "week.XLSX")
}
