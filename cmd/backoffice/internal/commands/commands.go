package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gosuda/backoffice/internal/auth"
	"github.com/gosuda/backoffice/internal/notify"
	"github.com/gosuda/backoffice/internal/payments"
	"github.com/gosuda/backoffice/internal/payslip"
	"github.com/gosuda/backoffice/internal/store"
	redisstore "github.com/gosuda/backoffice/internal/store/redis"
)

// Watcher streams an organization's payment and audit events.
type Watcher interface {
	Watch(ctx context.Context, org string) (<-chan redisstore.Event, func(), error)
}

// Globals carries the wired services into every command.
type Globals struct {
	Store    *store.Store
	Payments *payments.Service
	Auth     *auth.Service
	Notifier *notify.Notifier
	Payslips *payslip.Exporter
	Events   Watcher // nil unless the backend is Redis
	Out      io.Writer
	Version  string
}

// Startup runs before the selected command. It seeds the default users of the
// active organization, except for the seed command, which reports the result
// itself.
func Startup(ctx context.Context, globals *Globals, command string) error {
	if command == "seed" {
		return nil
	}
	if _, err := globals.Store.SeedDefaultUsers(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
