package commands

import (
	"context"
	"fmt"

	"github.com/gosuda/backoffice/internal/domain"
)

type InboxCmd struct {
	Role string `arg:"" help:"Portal role (hr, finance, teacher)" enum:"hr,finance,teacher"`
}

func (i *InboxCmd) Run(ctx context.Context, globals *Globals) error {
	msgs, err := globals.Notifier.Inbox(ctx, domain.Role(i.Role))
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}

	if len(msgs) == 0 {
		fmt.Fprintln(globals.Out, "No messages.")
		return nil
	}

	for _, m := range msgs {
		fmt.Fprintf(globals.Out, "%s  %-20s %s\n    %s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Subject, m.From, m.Body)
	}
	return nil
}
