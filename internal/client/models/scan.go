package models

import "time"

// ScanEntry is one scan captured on-device before the user signed in.
type ScanEntry struct {
	// LocalID is generated on the device and is stable for the entry's lifetime.
	LocalID string
	Image   ImageRef
	// Snapshot is the recognized item's full attribute set.
	Snapshot Payload
	// Raw is the unprocessed recognition/price response.
	Raw       Payload
	CreatedAt time.Time
}

// LocalSavedCollection is the single on-device Saved collection.
// MemberIDs are local ids, newest first, unique.
type LocalSavedCollection struct {
	ID        string
	Name      string
	MemberIDs []string
}
