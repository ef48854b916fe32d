package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tutu-network/numgen/internal/api"
	"github.com/tutu-network/numgen/internal/app"
	"github.com/tutu-network/numgen/internal/health"
	"github.com/tutu-network/numgen/internal/logger"
)

// Daemon wires together numgen's services from a Config.
type Daemon struct {
	Config  Config
	Log     *logger.Logger
	Service *app.Service
	Server  *api.Server
	Health  *health.Checker
}

// New loads the config file and creates a Daemon.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	svc := app.NewService(log)
	log.Debug("numbering plan loaded", "regions", svc.Countries.Len())

	srv := api.NewServer(svc, log, cfg.API.MaxCount, cfg.Cache.ResolverEntries)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	checker := health.NewChecker(svc.Plan, cfg.Generate.OutputDir)
	srv.SetHealth(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:  cfg,
		Log:     log,
		Service: svc,
		Server:  srv,
		Health:  checker,
	}, nil
}

// Serve starts the HTTP server and blocks until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Health.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	fmt.Fprintf(os.Stdout, "numgen serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Fprintf(os.Stdout, "  Metrics: http://%s/metrics\n", addr)
	}
	d.Log.Info("api server started", "addr", addr)

	err := g.Wait()
	d.Log.Info("api server stopped")
	return err
}

// Close releases daemon resources.
func (d *Daemon) Close() {
	if d.Server != nil {
		d.Server.Close()
	}
	if d.Log != nil {
		d.Log.Sync()
	}
}
