package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-substitution-api/internal/dto"
	"github.com/noah-isme/sma-substitution-api/internal/middleware"
	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/service"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
	"github.com/noah-isme/sma-substitution-api/pkg/response"
)

type substitutionService interface {
	Plan(ctx context.Context, day string) (*dto.PlanResponse, error)
	Generate(ctx context.Context, day string, req dto.GeneratePlanRequest) (*dto.PlanResponse, error)
	Reset(ctx context.Context, day string) (*dto.PlanResponse, error)
	FreeTeachers(ctx context.Context, query dto.FreeTeachersQuery) (*dto.FreeTeachersResponse, bool, error)
}

type planExporter interface {
	Plan(ctx context.Context, day string, format models.ExportFormat) (*service.ExportFile, error)
}

// SubstitutionHandler exposes plan generation, reset, export and the free teacher finder.
type SubstitutionHandler struct {
	service  substitutionService
	exporter planExporter
}

// NewSubstitutionHandler constructs the handler.
func NewSubstitutionHandler(service substitutionService, exporter planExporter) *SubstitutionHandler {
	return &SubstitutionHandler{service: service, exporter: exporter}
}

// Plan godoc
// @Summary Current substitution plan of a day
// @Tags Substitutions
// @Produce json
// @Param day path string true "Day name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /substitutions/{day} [get]
func (h *SubstitutionHandler) Plan(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	plan, err := h.service.Plan(c.Request.Context(), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetRevision(c, plan.Revision)
	response.JSON(c, http.StatusOK, plan, middleware.ExtractMeta(c))
}

// Generate godoc
// @Summary Generate the substitution plan of a day
// @Tags Substitutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day path string true "Day name"
// @Param payload body dto.GeneratePlanRequest true "Absent teachers"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /substitutions/{day}/generate [post]
func (h *SubstitutionHandler) Generate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	start := time.Now()
	plan, err := h.service.Generate(c.Request.Context(), c.Param("day"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetRevision(c, plan.Revision)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, plan, meta)
}

// Reset godoc
// @Summary Clear the substitution plan of a day, keeping its absentees
// @Tags Substitutions
// @Produce json
// @Security BearerAuth
// @Param day path string true "Day name"
// @Success 200 {object} response.Envelope
// @Router /substitutions/{day} [delete]
func (h *SubstitutionHandler) Reset(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	plan, err := h.service.Reset(c.Request.Context(), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetRevision(c, plan.Revision)
	response.JSON(c, http.StatusOK, plan, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the substitution plan of a day
// @Tags Substitutions
// @Produce text/csv
// @Produce application/pdf
// @Param day path string true "Day name"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /substitutions/{day}/export [get]
func (h *SubstitutionHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Plan(c.Request.Context(), c.Param("day"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// FreeTeachers godoc
// @Summary Teachers free to cover a period
// @Tags Availability
// @Produce json
// @Param day query string true "Day name"
// @Param period query int true "Period number, starting at 1"
// @Param absent query string false "Comma separated absent teachers"
// @Param withPlan query bool false "Include the stored absentees and plan of the day"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability/free [get]
func (h *SubstitutionHandler) FreeTeachers(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.FreeTeachersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	query.Absent = splitList(query.Absent)

	start := time.Now()
	result, cacheHit, err := h.service.FreeTeachers(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, result, meta)
}

// splitList accepts both repeated and comma separated query values.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
