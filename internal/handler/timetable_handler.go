package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-substitution-api/internal/dto"
	"github.com/noah-isme/sma-substitution-api/internal/middleware"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
	"github.com/noah-isme/sma-substitution-api/pkg/response"
)

type timetableService interface {
	Overview(ctx context.Context) (*dto.TimetableOverview, error)
	Day(ctx context.Context, day string) (*dto.DayView, error)
	Class(ctx context.Context, className string) (*dto.ClassView, error)
	Teacher(ctx context.Context, name string) (*dto.TeacherView, error)
}

// TimetableHandler serves read-only timetable views.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Overview godoc
// @Summary Days, periods, classes and teachers of the loaded timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	overview, err := h.service.Overview(c.Request.Context())
	respond(c, overview, err)
}

// Day godoc
// @Summary Day grid with substitutes overlaid
// @Tags Timetable
// @Produce json
// @Param day path string true "Day name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/days/{day} [get]
func (h *TimetableHandler) Day(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	view, err := h.service.Day(c.Request.Context(), c.Param("day"))
	respond(c, view, err)
}

// Class godoc
// @Summary Week of one class with substitutes overlaid
// @Tags Timetable
// @Produce json
// @Param class path string true "Class name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/classes/{class} [get]
func (h *TimetableHandler) Class(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	view, err := h.service.Class(c.Request.Context(), c.Param("class"))
	respond(c, view, err)
}

// Teacher godoc
// @Summary Week of one teacher with substitution duties
// @Tags Timetable
// @Produce json
// @Param teacher path string true "Teacher name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/teachers/{teacher} [get]
func (h *TimetableHandler) Teacher(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	view, err := h.service.Teacher(c.Request.Context(), c.Param("teacher"))
	respond(c, view, err)
}

func respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, middleware.ExtractMeta(c))
}
