package commands

import (
	"context"
	"fmt"
)

type SeedCmd struct{}

func (s *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	seeded, err := globals.Store.SeedDefaultUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	org := globals.Store.ActiveOrg(ctx)
	if seeded {
		fmt.Fprintf(globals.Out, "Seeded default users for %s\n", org)
		return nil
	}
	fmt.Fprintf(globals.Out, "Users already present for %s\n", org)
	return nil
}
