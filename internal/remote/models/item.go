// Package models defines the records stored by the remote backend: items
// (recognized antiques), scan history entries and collections.
package models

import "time"

// ItemAttributes is the complete, default-filled attribute set of an Item.
type ItemAttributes struct {
	Name        string
	Description string
	// ImageURL is nil or a durable remote URL.
	ImageURL *string
	Origin   string

	PeriodStart int
	PeriodEnd   int

	Condition      string
	ConditionNotes string

	Categories    []string
	Specification map[string]any

	Provenance        string
	AcquisitionSource string

	PriceMin float64
	PriceMax float64
	Currency string
}

// Item is a recognized antique owned by one user.
type Item struct {
	ID      string
	OwnerID string
	ItemAttributes
	CreatedAt time.Time
	UpdatedAt time.Time
}
