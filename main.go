package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahmad-alkadri/simple-blob-manager/internal/api"
	"github.com/ahmad-alkadri/simple-blob-manager/internal/config"
	"github.com/ahmad-alkadri/simple-blob-manager/internal/gate"
	"github.com/ahmad-alkadri/simple-blob-manager/internal/metrics"
	"github.com/ahmad-alkadri/simple-blob-manager/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services holds everything a request needs, built once from Config.
type services struct {
	cfg        *config.Config
	binder     *api.Binder
	dispatcher *api.Dispatcher
	handler    *api.Handler
	registry   *prometheus.Registry
}

func buildServices(cfg *config.Config) (*services, error) {
	open, err := storage.OpenerFor(cfg.StorageProvider)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New("blobmanager", registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager := storage.NewBlobManager(open, m)
	binder := api.NewBinder(cfg.ConnectionString, api.NewRequestKinds(cfg.DefaultContainer, cfg.RequestContainers))
	dispatcher := api.NewDispatcher(manager)
	handler := api.NewHandler(gate.New(cfg.HeaderKey, cfg.HeaderSecrets), binder, dispatcher, m, cfg.MaxBodyBytes)

	return &services{
		cfg:        cfg,
		binder:     binder,
		dispatcher: dispatcher,
		handler:    handler,
		registry:   registry,
	}, nil
}

func (s *services) router() http.Handler {
	opts := api.RouterOptions{
		EnableCORS:   s.cfg.EnableCORS,
		CanaryHeader: s.cfg.HeaderKey,
	}
	if s.cfg.MetricsEnabled {
		opts.Gatherer = s.registry
	}
	return api.NewRouter(s.handler, opts)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().
		Str("provider", cfg.StorageProvider).
		Str("container", cfg.DefaultContainer).
		Strs("request_kinds", cfg.RequestTags()).
		Str("header_key", cfg.HeaderKey).
		Int("secrets", len(cfg.HeaderSecrets)).
		Msg("starting server")
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	svc, err := buildServices(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      svc.router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server shutdown complete")
	return nil
}
