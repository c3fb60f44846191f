package models

import "time"

// HistoryEntry links one capture event to the Item it produced.
type HistoryEntry struct {
	ID         string
	OwnerID    string
	ImageURL   *string
	ItemID     string
	RawPayload map[string]any
	CreatedAt  time.Time
}
