package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// Collections lists the signed-in user's collections.
func (a *App) Collections(ctx context.Context) error {
	owner, err := a.requireOwner()
	if err != nil {
		return err
	}
	cols, err := a.remote.FindCollectionsByOwner(ctx, owner, "")
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		fmt.Fprintln(a.out, "No collections yet")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\t%d item(s)\n", c.ID, c.Name, len(c.MemberIDs))
	}
	return tw.Flush()
}

func (a *App) NewCollection(ctx context.Context, name string) error {
	owner, err := a.requireOwner()
	if err != nil {
		return err
	}
	c, err := a.remote.CreateCollection(ctx, owner, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %q as %s\n", c.Name, c.ID)
	return nil
}

// File adds an item to a collection.
func (a *App) File(ctx context.Context, collectionID, itemID string) error {
	if _, err := a.requireOwner(); err != nil {
		return err
	}
	if err := a.remote.AddMemberToCollection(ctx, collectionID, itemID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Filed %s into %s\n", itemID, collectionID)
	return nil
}

// Move files an item into toID and takes it out of fromID.
func (a *App) Move(ctx context.Context, fromID, toID, itemID string) error {
	if _, err := a.requireOwner(); err != nil {
		return err
	}
	if err := a.remote.MoveMember(ctx, fromID, toID, itemID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved %s from %s to %s\n", itemID, fromID, toID)
	return nil
}

// Unfile takes an item out of a collection. The item itself is kept.
func (a *App) Unfile(ctx context.Context, collectionID, itemID string) error {
	if _, err := a.requireOwner(); err != nil {
		return err
	}
	if err := a.remote.RemoveMember(ctx, collectionID, itemID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s from %s\n", itemID, collectionID)
	return nil
}
