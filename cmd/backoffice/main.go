package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/backoffice/cmd/backoffice/internal/commands"
	"github.com/gosuda/backoffice/internal/auth"
	"github.com/gosuda/backoffice/internal/config"
	"github.com/gosuda/backoffice/internal/domain"
	"github.com/gosuda/backoffice/internal/gateway"
	"github.com/gosuda/backoffice/internal/notify"
	"github.com/gosuda/backoffice/internal/payments"
	"github.com/gosuda/backoffice/internal/payslip"
	"github.com/gosuda/backoffice/internal/store"
	"github.com/gosuda/backoffice/internal/store/memory"
	"github.com/gosuda/backoffice/internal/store/postgres"
	redisstore "github.com/gosuda/backoffice/internal/store/redis"
	"github.com/gosuda/backoffice/internal/store/sqlite"
)

var (
	version = "dev"
	cli     struct {
		Seed        commands.SeedCmd        `cmd:"" help:"Seed the default portal users"`
		Pay         commands.PayCmd         `cmd:"" help:"Submit a payment to the mock gateway"`
		History     commands.HistoryCmd     `cmd:"" help:"Show the payments log"`
		List        commands.ListCmd        `cmd:"" help:"Print the records of a collection"`
		Collections commands.CollectionsCmd `cmd:"" help:"List known collections and their keys"`
		Login       commands.LoginCmd       `cmd:"" help:"Check portal credentials"`
		Payslip     commands.PayslipCmd     `cmd:"" help:"Export a payslip PDF"`
		Inbox       commands.InboxCmd       `cmd:"" help:"Show the portal inbox of a role"`
		Watch       commands.WatchCmd       `cmd:"" help:"Stream payment and audit events (Redis backend)"`
		Org         string                  `help:"Organization to operate on (defaults to BACKOFFICE_DEFAULT_ORG)." env:"BACKOFFICE_ORG"`
		Version     kong.VersionFlag
	}
)

func main() {
	kctx := kong.Parse(&cli, kong.Vars{"version": version})
	if err := run(kctx); err != nil {
		log.Fatal().Err(err).Msg("backoffice failed")
	}
}

func run(kctx *kong.Context) error {
	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("BACKOFFICE_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("BACKOFFICE_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	st := store.New(be.kv, store.WithDefaultOrg(cfg.DefaultOrg))
	if cli.Org != "" {
		ctx = domain.WithOrg(ctx, cli.Org)
	}

	gw := gateway.New(gateway.Config{
		MinDelay:           cfg.Gateway.MinDelay,
		MaxDelay:           cfg.Gateway.MaxDelay,
		BankSuccessRate:    cfg.Gateway.BankRate,
		MomoSuccessRate:    cfg.Gateway.MomoRate,
		DefaultSuccessRate: cfg.Gateway.DefaultRate,
	})

	notifier := notify.New(st, "system")

	var engine payslip.Engine
	if cfg.Payslip.PDFEnabled {
		engine = payslip.NewFPDF()
	}

	globals := &commands.Globals{
		Store:    st,
		Payments: payments.NewService(st, gw, be.publisher, payments.WithNotifier(notifier)),
		Auth:     auth.NewService(st),
		Notifier: notifier,
		Payslips: payslip.NewExporter(engine, cfg.Payslip.Dir),
		Events:   be.watcher,
		Out:      os.Stdout,
		Version:  version,
	}

	// Every run except seed itself makes sure the portal is usable.
	if err := commands.Startup(ctx, globals, kctx.Command()); err != nil {
		return err
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	return kctx.Run(globals)
}

type backend struct {
	kv        domain.KV
	publisher payments.Publisher // nil unless Redis
	watcher   commands.Watcher   // nil unless Redis
	close     func()
}

// openBackend connects the configured store backend.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return &backend{kv: memory.New(), close: func() {}}, nil

	case config.BackendSQLite:
		kv, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{kv: kv, close: func() {
			if closeErr := kv.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("sqlite close")
			}
		}}, nil

	case config.BackendRedis:
		client, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return &backend{kv: client, publisher: client, watcher: client, close: func() {
			if closeErr := client.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("redis close")
			}
		}}, nil

	case config.BackendPostgres:
		if cfg.Database.MaxConns > math.MaxInt32 {
			return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
		}
		kv, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
		if err != nil {
			return nil, err
		}
		return &backend{kv: kv, close: kv.Close}, nil
	}

	return nil, errors.New("unknown store backend " + cfg.Store.Backend)
}
