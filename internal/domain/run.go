package domain

import "time"

// Run summarizes one generation run for exports and reports.
type Run struct {
	ID          string            `json:"run_id"`
	Country     CountryResolution `json:"country"`
	Mode        GenerationMode    `json:"mode"`
	LocalLength int               `json:"local_length"`
	Requested   int               `json:"requested"`
	Accepted    int               `json:"accepted"`
	Attempts    int               `json:"attempts"`
	Exhausted   bool              `json:"exhausted"`
	StartedAt   time.Time         `json:"started_at"`
	Elapsed     time.Duration     `json:"elapsed_ns"`
}
