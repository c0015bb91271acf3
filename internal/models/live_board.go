package models

import "time"

// LiveBoard is the periodically refreshed "who is free right now" snapshot.
type LiveBoard struct {
	Day          string        `json:"day"`
	Period       int           `json:"period"`
	PeriodName   string        `json:"periodName,omitempty"`
	PeriodTime   string        `json:"periodTime,omitempty"`
	FreeTeachers []FreeTeacher `json:"freeTeachers"`
	RefreshedAt  time.Time     `json:"refreshedAt"`
}
