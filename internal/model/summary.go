package model

import "time"

// MonthlySummary aggregates every job scheduled inside one calendar month.
// It is derived from the jobs collection on every request; nothing here is
// stored.
type MonthlySummary struct {
	Year           int            `json:"year"`
	Month          time.Month     `json:"month"`
	JobCount       int            `json:"jobCount"`
	MaterialsTotal float64        `json:"materialsTotal"`
	LaborTotal     float64        `json:"laborTotal"`
	Total          float64        `json:"total"`
	AvgMaterials   float64        `json:"avgMaterials"`
	AvgLabor       float64        `json:"avgLabor"`
	MostExpensive  *Job           `json:"mostExpensive,omitempty"`
	LeastExpensive *Job           `json:"leastExpensive,omitempty"`
	JobsByType     map[string]int `json:"jobsByType"`
	TopClients     []ClientCount  `json:"topClients"`
	Jobs           []Job          `json:"jobs"`
}

// ClientCount is one row of the frequent-clients ranking.
type ClientCount struct {
	ClientName string `json:"clientName"`
	Jobs       int    `json:"jobs"`
}

// DaySchedule is one day of the weekly calendar view.
type DaySchedule struct {
	Date time.Time `json:"date"`
	Jobs []Job     `json:"jobs"`
}
