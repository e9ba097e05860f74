package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/demo"
	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/metrics"
	"github.com/vango-dev/vtree/pkg/recorder"
	"github.com/vango-dev/vtree/pkg/remote"
	"github.com/vango-dev/vtree/pkg/runtime"
)

type serveOptions struct {
	dir  string
	addr string
	app  string
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Mount a demo app and stream its batches over WebSocket",
		Long: `Mount a demo app and serve it to remote backends.

Clients connect over WebSocket, receive a snapshot of the tree and then
every batch the runtime delivers. Events sent by clients are dispatched
to the listeners of the addressed node.

Routes:
  <path>        WebSocket endpoint (server.path, default /ws)
  /debug/tree   markup of the current tree
  /healthz      liveness and client count
  /metrics      Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory containing vtree.yaml")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&opts.app, "app", "todo", "Demo app to mount")

	return cmd
}

// loadConfig reads the configuration in dir, falling back to defaults when
// there is none.
func loadConfig(dir string) (*config.Config, error) {
	if !config.Exists(dir) {
		warn("No configuration in %s, using defaults", dir)
		return config.New(), nil
	}
	return config.Load(dir)
}

// archiveSink builds the S3 sink from the archive section. Credentials come
// from the standard AWS environment variables.
func archiveSink(cfg *config.Config) recorder.Sink {
	client := recorder.NewS3Client(recorder.S3Options{
		Region:          cfg.Archive.Region,
		Endpoint:        cfg.Archive.Endpoint,
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	})
	return recorder.NewS3Sink(client, cfg.Archive.Bucket)
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := loadConfig(opts.dir)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	app, ok := demo.Apps[opts.app]
	if !ok {
		return errors.New("E040").
			WithDetail(fmt.Sprintf("No demo app named %q", opts.app)).
			WithSuggestion(fmt.Sprintf("Available apps: %v", demo.Names()))
	}

	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	collector := metrics.New(metrics.WithRegistry(reg))

	hub := remote.NewHub(
		remote.WithConfig(cfg.RemoteConfig()),
		remote.WithLogger(logger),
		remote.WithGatherer(reg),
		remote.WithRegisterer(reg),
	)

	recOpts := []recorder.Option{
		recorder.WithHistory(recorder.NewHistory(cfg.Runtime.HistorySize)),
		recorder.WithLogger(logger),
	}
	if cfg.ArchiveEnabled() {
		recOpts = append(recOpts, recorder.WithSink(archiveSink(cfg), cfg.Archive.Prefix))
	}
	rec := recorder.New(hub, recOpts...)

	rt := runtime.New(rec,
		runtime.WithConfig(cfg.RuntimeConfig()),
		runtime.WithLogger(logger),
		runtime.WithObserver(collector),
	)
	collector.Track(rt)
	hub.Attach(rt)

	if err := rt.Mount(ctx, app.Node(nil)); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           hub.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := rt.Run(gctx)
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, runtime.ErrStopped) {
			return nil
		}
		return err
	})
	if cfg.ArchiveEnabled() {
		g.Go(func() error {
			return rec.Run(gctx, cfg.Archive.Interval.Std())
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		if err := rt.Close(shutdownCtx); err != nil && !stderrors.Is(err, runtime.ErrStopped) {
			logger.Warn("runtime close", "error", err)
		}
		return hub.Close()
	})

	printBanner()
	success("Serving %s on %s", opts.app, cfg.Server.Addr)
	info("WebSocket  %s", cfg.Server.Path)
	info("Tree       /debug/tree")
	info("Metrics    /metrics")
	if cfg.ArchiveEnabled() {
		info("Archive    s3://%s/%s every %s", cfg.Archive.Bucket, cfg.Archive.Prefix, cfg.Archive.Interval)
	}

	return g.Wait()
}
