// Package scans is the on-device collection store: the scan history captured
// before sign-in and the single local Saved collection.
//
// # Overview
//
// Repository is the row-level layer over a dbx.DBTX (either *sql.DB or
// *sql.Tx). Store composes it into the operations the rest of the client
// uses (AddScan, ListHistory, GetSavedCollection, RemoveScan, ClearAll),
// running every multi-row change in one transaction.
//
// # Ordering
//
// History and Saved members are returned newest-first. Order is kept by an
// insertion sequence, not by timestamps, so entries captured within the same
// clock tick still list deterministically.
//
// Typical Usage
//
//	store := scans.NewStore(db)
//	id, _ := store.AddScan(ctx, snapshot, raw, models.FileImage(path))
//	history, _ := store.ListHistory(ctx)
//	_ = store.ClearAll(ctx)
package scans
