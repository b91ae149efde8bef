package models

import "time"

// Brand is a cigar manufacturer.
type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Country     *string   `json:"country"`
	Website     *string   `json:"website"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Size is a named vitola, e.g. Robusto or Churchill.
type Size struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LengthInches *float64  `json:"lengthInches"`
	RingGauge    *int      `json:"ringGauge"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RingGauge is a cigar diameter in 64ths of an inch.
type RingGauge struct {
	ID          string    `json:"id"`
	Gauge       int       `json:"gauge"`
	Description *string   `json:"description"`
	CommonNames []string  `json:"commonNames"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Strength is a body/strength rating with a numeric level for sorting.
type Strength struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Level       int       `json:"level"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Origin is a growing region.
type Origin struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Region      *string   `json:"region"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
