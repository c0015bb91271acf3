package dto

import (
	"time"

	"github.com/noah-isme/sma-substitution-api/internal/models"
)

// GeneratePlanRequest lists the teachers absent on the requested day.
type GeneratePlanRequest struct {
	AbsentTeachers []string `json:"absentTeachers" validate:"required,min=1,dive,required"`
}

// FreeTeachersQuery asks who may cover a period. Period is 1-based.
type FreeTeachersQuery struct {
	Day      string   `form:"day" validate:"required"`
	Period   int      `form:"period" validate:"required,min=1"`
	Absent   []string `form:"absent"`
	WithPlan bool     `form:"withPlan"`
}

// PlanSummary counts a plan's vacancies by outcome.
type PlanSummary struct {
	Vacancies  int `json:"vacancies"`
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
}

// PlanResponse is the committed plan of a day together with its vacancy report.
type PlanResponse struct {
	Day            string              `json:"day"`
	AbsentTeachers []string            `json:"absentTeachers"`
	Plan           models.PlanGrid     `json:"plan"`
	Assignments    []models.Assignment `json:"assignments"`
	Summary        PlanSummary         `json:"summary"`
	Revision       string              `json:"revision,omitempty"`
	UpdatedAt      *time.Time          `json:"updatedAt,omitempty"`
}

// FreeTeachersResponse lists substitute candidates in ascending workload order.
type FreeTeachersResponse struct {
	Day        string               `json:"day"`
	Period     int                  `json:"period"`
	PeriodName string               `json:"periodName,omitempty"`
	PeriodTime string               `json:"periodTime,omitempty"`
	Absent     []string             `json:"absent"`
	Teachers   []models.FreeTeacher `json:"teachers"`
}
