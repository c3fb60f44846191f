package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/filex"
)

const remoteHistoryLimit = 20

// Scan records a new item: an optional photo (path or URL) and its attributes.
func (a *App) Scan(ctx context.Context) error {
	ref, err := getSimpleText(a.reader, "Photo path or URL (empty for none)", a.out)
	if err != nil {
		return err
	}
	image, err := a.captureImage(ref)
	if err != nil {
		return err
	}

	lines, err := GetAttributes(a.reader, a.out)
	if err != nil {
		return err
	}
	snapshot := parseAttributes(lines)
	raw := models.Payload{"source": "cli", "input": lines, "captured_at": time.Now().UTC().Format(time.RFC3339)}

	res, err := a.scans.Capture(ctx, snapshot, raw, image)
	switch {
	case res.Remote():
		fmt.Fprintf(a.out, "Added to Saved as %s\n", res.ItemID)
	case res.LocalID != "":
		fmt.Fprintf(a.out, "Stored on this device as %s\n", res.LocalID)
	}
	return err
}

// captureImage copies a local photo into the captures directory so the scan
// keeps a stable reference to it.
func (a *App) captureImage(ref string) (models.ImageRef, error) {
	img := models.ClassifyImage(ref)
	if img.Kind != models.ImageFile {
		return img, nil
	}
	if _, err := os.Stat(img.Value); err != nil {
		return models.ImageRef{}, fmt.Errorf("photo: %w", err)
	}
	dir, err := filex.EnsureSubdDir(a.config.CapturesDir)
	if err != nil {
		return models.ImageRef{}, err
	}
	path, err := filex.CopyInto(dir, img.Value)
	if err != nil {
		return models.ImageRef{}, err
	}
	return models.FileImage(path), nil
}

// parseAttributes turns "name=value" lines into a snapshot. Lines without
// '=' are ignored; categories are comma separated.
func parseAttributes(lines []string) models.Payload {
	p := models.Payload{}
	for _, l := range lines {
		k, v, ok := strings.Cut(l, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" {
			continue
		}
		if k == "categories" || k == "category" {
			var cats []string
			for _, c := range strings.Split(v, ",") {
				if c = strings.TrimSpace(c); c != "" {
					cats = append(cats, c)
				}
			}
			p["categories"] = cats
			continue
		}
		p[k] = v
	}
	return p
}

// History lists the account's scan history when signed in, otherwise the
// scans kept on this device.
func (a *App) History(ctx context.Context) error {
	if owner, ok := a.session.CurrentOwner(); ok {
		list, err := a.remote.History(ctx, owner, remoteHistoryLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, h := range list {
			image := "-"
			if h.ImageURL != nil {
				image = *h.ImageURL
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", h.CreatedAt.Local().Format(time.DateTime), h.ItemID, image)
		}
		return tw.Flush()
	}

	list, err := a.local.ListHistory(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No scans on this device")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.LocalID, e.CreatedAt.Local().Format(time.DateTime), scanName(e))
	}
	return tw.Flush()
}

// Saved lists the members of the Saved collection.
func (a *App) Saved(ctx context.Context) error {
	if owner, ok := a.session.CurrentOwner(); ok {
		return a.remoteSaved(ctx, owner)
	}

	saved, err := a.local.GetSavedCollection(ctx)
	if err != nil {
		return err
	}
	history, err := a.local.ListHistory(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]models.ScanEntry, len(history))
	for _, e := range history {
		byID[e.LocalID] = e
	}

	fmt.Fprintf(a.out, "%s (on this device, %d)\n", saved.Name, len(saved.MemberIDs))
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, id := range saved.MemberIDs {
		fmt.Fprintf(tw, "%s\t%s\n", id, scanName(byID[id]))
	}
	return tw.Flush()
}

func (a *App) remoteSaved(ctx context.Context, owner string) error {
	cols, err := a.remote.FindCollectionsByOwner(ctx, owner, "")
	if err != nil {
		return err
	}
	var ids []string
	for _, c := range cols {
		if c.Name == common.SavedCollectionName {
			ids = c.MemberIDs
			break
		}
	}

	items, err := a.remote.Items(ctx, owner, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%d)\n", common.SavedCollectionName, len(items))
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%.2f-%.2f %s\n", it.ID, it.Name, it.PeriodStart, it.PeriodEnd, it.PriceMin, it.PriceMax, it.Currency)
	}
	return tw.Flush()
}

// Remove deletes a scan kept on this device.
func (a *App) Remove(ctx context.Context, localID string) error {
	if err := a.local.RemoveScan(ctx, localID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s\n", localID)
	return nil
}

func scanName(e models.ScanEntry) string {
	if n, ok := e.Snapshot.String("name", "title"); ok {
		return n
	}
	return common.UnknownItemName
}
