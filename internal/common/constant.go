package common

const (
	// SavedCollectionName is the reserved name of the default collection.
	// Exactly one remote collection per owner carries it.
	SavedCollectionName = "Saved"

	// LocalSavedCollectionID identifies the on-device Saved collection. It can
	// never collide with a backend-assigned id.
	LocalSavedCollectionID = "local-saved"

	// UnknownItemName is used when a recognized item has no name.
	UnknownItemName = "Unknown Antique"
)
