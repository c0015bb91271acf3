package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-substitution-api/internal/service"
)

type probeFunc func() error

func (f probeFunc) Ready(context.Context) error { return f() }

func TestMetricsHandlerEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObservePlan("Monday", 8, 0, 0)

	ready := true
	h := NewMetricsHandler(metrics, probeFunc(func() error {
		if !ready {
			return errors.New("timetable not loaded")
		}
		return nil
	}))
	r := gin.New()
	r.GET("/metrics", h.Prometheus)
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	rec := serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `substitution_plans_generated_total{day="Monday"} 1`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "").Code)

	ready = false
	rec = serve(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "timetable not loaded")
}

func TestMetricsHandlerWithoutMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", NewMetricsHandler(nil, nil).Prometheus)

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/metrics", "").Code)
}
