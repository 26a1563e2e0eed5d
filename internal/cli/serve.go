package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lazypower/neurograph/internal/layout"
	"github.com/lazypower/neurograph/internal/scene"
	"github.com/lazypower/neurograph/internal/server"
)

var serveAgent string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Animate the graph and serve it over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAgent, "agent", "", "only load records belonging to this agent id")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()

	mode, err := layout.ParseMode(cfg.Simulation.Mode)
	if err != nil {
		return err
	}
	sc := scene.New(scene.Options{
		Width:     cfg.Canvas.Width,
		Height:    cfg.Canvas.Height,
		Params:    cfg.Simulation.Physics,
		Mode:      mode,
		DemoCount: cfg.Simulation.DemoCount,
		Seed:      cfg.Simulation.Seed,
		Logger:    logger.Named("scene"),
	})
	recs, err := db.LoadRecords(serveAgent)
	if err != nil {
		return errors.Wrap(err, "load records")
	}
	sc.Load(recs)

	srv := server.New(db, sc, VersionString(),
		server.WithLogger(logger.Named("http")),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins))
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scene.NewRunner(sc, cfg.Simulation.FPS, logger.Named("runner")).Run(ctx)
	})
	g.Go(func() error {
		logger.Info("neurograph serving",
			zap.String("addr", httpServer.Addr),
			zap.String("db", db.Path),
			zap.String("mode", string(mode.Mode)))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
