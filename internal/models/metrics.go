package models

import "time"

// SystemMetrics is a lightweight snapshot of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	PlansGenerated           uint64    `json:"plansGenerated"`
	VacanciesTotal           uint64    `json:"vacanciesTotal"`
	UnassignedTotal          uint64    `json:"unassignedTotal"`
	SourceLoadCount          uint64    `json:"sourceLoadCount"`
	AverageSourceLoadMs      float64   `json:"averageSourceLoadMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
