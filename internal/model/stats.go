package model

import "time"

// StatDelta is a count of outcomes not yet written to the stats store.
type StatDelta struct {
	Scheme string
	Kind   string
	Count  int64
}

type SchemeStat struct {
	Scheme    string    `json:"scheme"`
	Kind      string    `json:"kind"`
	Total     int64     `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}
