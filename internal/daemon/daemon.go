package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/api"
	"github.com/rachamuffin/rachamuffin/internal/app/account"
	"github.com/rachamuffin/rachamuffin/internal/app/engagement"
	"github.com/rachamuffin/rachamuffin/internal/app/savedata"
	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/health"
	"github.com/rachamuffin/rachamuffin/internal/infra/metrics"
	"github.com/rachamuffin/rachamuffin/internal/infra/sqlite"
	"github.com/rachamuffin/rachamuffin/internal/logger"
)

// Daemon is the Rachamuffin runtime. It wires together all services.
type Daemon struct {
	Config   Config
	DB       *sqlite.DB
	Store    *sqlite.Store
	Inbox    *engagement.Inbox
	Engine   *engagement.Engine
	Accounts *account.Service
	SaveData *savedata.Service
	Health   *health.Checker
	Server   *api.Server
	Log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New loads the configuration and creates a Daemon on the wall clock.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, domain.SystemClock{}, newLogger(cfg.Logging))
}

// NewWithConfig creates a Daemon with the given configuration, clock and logger.
func NewWithConfig(cfg Config, clock domain.Clock, log zerolog.Logger) (*Daemon, error) {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	dir := cfg.Store.Dir
	if dir == "" {
		dir = Home()
	}

	db, err := sqlite.Open(dir, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	rules := cfg.Engagement.Rules()
	store := sqlite.NewStore(db, cfg.Store.Namespace, log)
	inbox := engagement.NewInbox(db, clock, log)
	eng := engagement.New(store, db, inbox, clock, rules, log)
	accounts := account.NewService(store, eng.Game, inbox, clock, log)
	eng.SetStreakNamer(accounts.StreakName)

	d := &Daemon{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Inbox:    inbox,
		Engine:   eng,
		Accounts: accounts,
		SaveData: savedata.NewService(store, rules.InitialExpToNext, log),
		Health:   health.NewChecker(db, dir, log),
		Log:      log.With().Str("component", "daemon").Logger(),
	}

	metrics.CurrentStreak.Set(float64(eng.Streak.State().Streak))
	metrics.CoinsBalance.Set(float64(eng.Wallet.Balance()))

	d.Server = api.NewServer(api.Services{
		Engine:   eng,
		Accounts: accounts,
		SaveData: d.SaveData,
		Inbox:    inbox,
		Health:   d.Health,
		Reset:    d.resetLocked,
	}, &d.mu, cfg.API.CORSOrigins, log)

	return d, nil
}

// Lock serializes engine access within this process; the API server holds
// the same mutex. Separate processes sharing a data directory are not
// coordinated.
func (d *Daemon) Lock() { d.mu.Lock() }

// Unlock releases the lock taken by Lock.
func (d *Daemon) Unlock() { d.mu.Unlock() }

// Reset wipes all progress, the coin ledger and the notification inbox.
func (d *Daemon) Reset() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resetLocked()
}

func (d *Daemon) resetLocked() bool {
	ok := d.Engine.Reset()
	if err := d.DB.DeleteLedger(); err != nil {
		d.Log.Warn().Err(err).Msg("clear coin ledger")
		ok = false
	}
	if err := d.DB.DeleteNotifications(); err != nil {
		d.Log.Warn().Err(err).Msg("clear notifications")
		ok = false
	}
	return ok
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		timeout := d.Config.API.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			d.Log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	d.Log.Info().Str("addr", addr).Msg("rachamuffin serving")
	fmt.Printf("Rachamuffin serving on http://%s\n", addr)
	fmt.Printf("  Metrics: http://%s/metrics\n", addr)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	cancel()
	<-shutdownDone
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Log.Warn().Err(err).Msg("close database")
		}
	}
}

func newLogger(cfg LoggingConfig) zerolog.Logger {
	if cfg.Format == "json" {
		return logger.New(cfg.Level, os.Stderr)
	}
	return logger.NewConsole(cfg.Level, os.Stderr)
}
