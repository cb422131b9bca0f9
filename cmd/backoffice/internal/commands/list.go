package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gosuda/backoffice/internal/domain"
)

type ListCmd struct {
	Collection string `arg:"" help:"Collection key suffix or name, e.g. payments_log or PaymentsLog"`
}

func (l *ListCmd) Run(ctx context.Context, globals *Globals) error {
	c, err := domain.ParseCollection(l.Collection)
	if err != nil {
		return err
	}

	records, err := globals.Store.ReadRecords(ctx, globals.Store.Key(ctx, c))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.Name(), err)
	}

	return printJSON(globals.Out, records)
}

type CollectionsCmd struct{}

func (c *CollectionsCmd) Run(ctx context.Context, globals *Globals) error {
	stored, err := globals.Store.StoredCollections(ctx)
	listed := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotSupported) {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if !listed {
		fmt.Fprintf(globals.Out, "%-18s %s\n", "Collection", "Key")
		for _, col := range domain.Collections() {
			fmt.Fprintf(globals.Out, "%-18s %s\n", col.Name(), globals.Store.Key(ctx, col))
		}
		return nil
	}

	fmt.Fprintf(globals.Out, "%-18s %-32s %s\n", "Collection", "Key", "Stored")
	for _, col := range domain.Collections() {
		mark := "-"
		if slices.Contains(stored, col) {
			mark = "yes"
		}
		fmt.Fprintf(globals.Out, "%-18s %-32s %s\n", col.Name(), globals.Store.Key(ctx, col), mark)
	}
	return nil
}
