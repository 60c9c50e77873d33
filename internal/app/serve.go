package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/buddy-dubby/reselling-app/internal/scheduler"
	"github.com/buddy-dubby/reselling-app/internal/server"
	"github.com/buddy-dubby/reselling-app/internal/service"
)

// Serve runs the HTTP API until interrupted. When revalue.enabled is set the
// periodic revaluation loop runs alongside it in the same process.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := os.MkdirAll(a.Config.Server.UploadDir, 0o755); err != nil {
		return err
	}

	engine := a.newEngine()
	remover := a.newRemover()
	defer remover.Close()

	var sched *scheduler.Scheduler
	if a.Config.Revalue.Enabled {
		sched = a.newScheduler()
	}
	svc := service.New(a.Config, sched, engine, store, a.newNotifier(), a.Logger)

	srv := server.New(server.Options{
		Port:           a.Config.Server.Port,
		CORSOrigins:    a.Config.Server.CORSOrigins,
		UploadDir:      a.Config.Server.UploadDir,
		MaxUploadBytes: a.Config.Server.MaxUploadBytes(),
	}, server.Deps{
		Engine:   engine,
		Store:    store,
		Remover:  remover,
		Revaluer: svc,
		Logger:   a.Logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info().Int("port", a.Config.Server.Port).Msg("starting api server")
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if a.Config.Revalue.Enabled {
		g.Go(func() error {
			err := svc.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("api server stopped")
	return nil
}
