package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gosuda/backoffice/internal/domain"
	redisstore "github.com/gosuda/backoffice/internal/store/redis"
)

var errWatchUnavailable = errors.New("watch needs BACKOFFICE_STORE_BACKEND=redis") //nolint:gochecknoglobals // sentinel error

type WatchCmd struct {
	Count int `help:"Stop after this many events (0 waits until interrupted)" default:"0"`
}

func (w *WatchCmd) Run(ctx context.Context, globals *Globals) error {
	if globals.Events == nil {
		return errWatchUnavailable
	}

	org := globals.Store.ActiveOrg(ctx)
	events, stop, err := globals.Events.Watch(ctx, org)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", org, err)
	}
	defer stop()

	fmt.Fprintf(globals.Out, "Watching payments and audit for %s (press Ctrl+C to stop)...\n", org)

	seen := 0
	for ev := range events {
		w.printEvent(globals, ev)
		seen++
		if w.Count > 0 && seen >= w.Count {
			return nil
		}
	}
	return nil
}

func (w *WatchCmd) printEvent(globals *Globals, ev redisstore.Event) {
	switch ev.Kind() {
	case "payments":
		var o domain.PaymentOutcome
		if err := json.Unmarshal(ev.Payload, &o); err == nil {
			status := "FAILED"
			if o.Success {
				status = "OK"
			}
			fmt.Fprintf(globals.Out, "payment %-6s %s %s %s to %s (%s)\n",
				status, o.TxID, o.Provider, o.Amount.StringFixed(2), o.Account, o.Reference)
			return
		}
	case "audit":
		var a domain.AuditEntry
		if err := json.Unmarshal(ev.Payload, &a); err == nil {
			fmt.Fprintf(globals.Out, "audit   %s %s %s/%s by %s\n",
				a.CreatedAt.Format("15:04:05"), a.Action, a.Resource, a.ResourceID, a.Actor)
			return
		}
	}
	fmt.Fprintf(globals.Out, "%s %s\n", ev.Channel, ev.Payload)
}
