package dto

import "github.com/noah-isme/sma-substitution-api/internal/models"

// DashboardResponse summarises today for the front page.
type DashboardResponse struct {
	Today               string               `json:"today"`
	CurrentPeriod       int                  `json:"currentPeriod"`
	PeriodName          string               `json:"periodName,omitempty"`
	PeriodTime          string               `json:"periodTime,omitempty"`
	ClassesToday        int                  `json:"classesToday"`
	ActiveTeachersToday int                  `json:"activeTeachersToday"`
	TotalTeachers       int                  `json:"totalTeachers"`
	TotalClasses        int                  `json:"totalClasses"`
	SubstitutionsToday  int                  `json:"substitutionsToday"`
	AbsentToday         []string             `json:"absentToday"`
	LiveBoard           models.LiveBoard     `json:"liveBoard"`
	System              models.SystemMetrics `json:"system"`
}
