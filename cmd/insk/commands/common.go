package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/inskhq/insk-go/pkg/config"
	"github.com/inskhq/insk-go/pkg/gateway"
	"github.com/inskhq/insk-go/pkg/insk"
	"github.com/inskhq/insk-go/pkg/notify"
	"github.com/inskhq/insk-go/pkg/pipeline"
	"github.com/inskhq/insk-go/pkg/session"
	"github.com/inskhq/insk-go/pkg/telemetry"
)

// AppContext carries the wired client stack for one CLI invocation.
//
// Sessions deliberately do not survive across invocations: the credential
// store purges any persisted token at construction, so each process is
// authenticated only between an explicit login and its own exit. Commands
// that need a session log in during setup from INSK_EMAIL/INSK_PASSWORD or
// the --email/--password flags.
type AppContext struct {
	Config    config.Config
	Logger    zerolog.Logger
	Store     *session.FileStore
	Watcher   *session.Watcher
	Gateway   *gateway.Client
	API       *insk.Client
	Tracker   *pipeline.Tracker
	Notifier  notify.Notifier
	Telemetry *telemetry.Manager
}

// NewAppContext loads configuration and wires the full stack. When login is
// true the caller requires a session and credentials are mandatory.
func NewAppContext(ctx context.Context, cmd *cli.Command, login bool) (*AppContext, error) {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load(cmd.String("env"))

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log)

	mgr, err := telemetry.NewManager(telemetry.Config{
		ServiceName:  "insk",
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}
	telemetry.SetDefault(mgr)

	store, err := session.NewFileStore(cfg.TokenDir)
	if err != nil {
		return nil, err
	}
	watcher, err := session.NewWatcher(store)
	if err != nil {
		logger.Warn().Err(err).Msg("token watcher unavailable; external session changes will not be observed")
		watcher = nil
	}
	store.Subscribe(func(ch session.Change) {
		logger.Debug().
			Str("source", ch.Source.String()).
			Bool("authenticated", ch.Authenticated).
			Msg("session changed")
	})

	gw, err := gateway.New(cfg.APIRoot(), store,
		gateway.WithTimeout(cfg.Timeout.Std()),
		gateway.WithLogoutOnForbidden(cfg.LogoutOnForbidden),
		gateway.WithLogger(logger),
		gateway.WithTelemetry(mgr),
	)
	if err != nil {
		return nil, err
	}
	api := insk.New(gw, store)
	notifier := notify.NewDesktop("INSK", "")
	tracker, err := pipeline.NewTracker(api.NewsFeed(), notifier, pipeline.Config{
		Interval:    cfg.Poll.Interval.Std(),
		MaxAttempts: cfg.Poll.MaxAttempts,
		SkewWindow:  cfg.Poll.SkewWindow.Std(),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	app := &AppContext{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Watcher:   watcher,
		Gateway:   gw,
		API:       api,
		Tracker:   tracker,
		Notifier:  notifier,
		Telemetry: mgr,
	}
	if login {
		if err := app.login(ctx, cmd); err != nil {
			app.Close()
			return nil, err
		}
	}
	return app, nil
}

// Close releases watcher and telemetry resources.
func (a *AppContext) Close() {
	if a.Watcher != nil {
		_ = a.Watcher.Close()
	}
	_ = a.Telemetry.Shutdown(context.Background())
}

func (a *AppContext) login(ctx context.Context, cmd *cli.Command) error {
	email := firstNonEmpty(cmd.String("email"), os.Getenv("INSK_EMAIL"))
	password := firstNonEmpty(cmd.String("password"), os.Getenv("INSK_PASSWORD"))
	if email == "" || password == "" {
		return fmt.Errorf("credentials required: pass --email/--password or set INSK_EMAIL/INSK_PASSWORD")
	}
	if err := a.API.Auth.Login(ctx, email, password); err != nil {
		return describeErr(err)
	}
	a.Logger.Debug().Str("email", email).Msg("logged in")
	return nil
}

// describeErr rewrites classified gateway errors into user-facing messages.
// The taxonomy lets the CLI tell "server is down" from "server rejected it".
func describeErr(err error) error {
	ge, ok := gateway.Classify(err)
	if !ok {
		return err
	}
	switch ge.Kind {
	case gateway.KindNetworkUnavailable:
		return fmt.Errorf("%s", ge.Message)
	case gateway.KindUnauthorized:
		return fmt.Errorf("not authorized: %s", ge.Message)
	case gateway.KindForbidden:
		return fmt.Errorf("forbidden: %s", ge.Message)
	default:
		return fmt.Errorf("request failed (%d): %s", ge.Status, ge.Message)
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
