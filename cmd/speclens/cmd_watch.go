// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/speclens/services/speclens/spectral"
	"github.com/AleutianAI/speclens/services/speclens/watch"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-lint in-scope documents when they change",
		Long: `Watch monitors a directory tree and re-lints any in-scope document
after it changes, with a debounce window so one save triggers one run.

When watch.metrics_addr is configured, run metrics are exposed in
Prometheus format on that address for the duration of the watch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd.Context(), dir)
		},
	}

	return cmd
}

func runWatch(parent context.Context, dir string) error {
	logger := setupLogging()
	defer logger.Close()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving watch root: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr := settings.Watch.MetricsAddr; addr != "" {
		if err := serveMetrics(ctx, addr); err != nil {
			return err
		}
	}

	runner := spectral.NewRunner(
		spectral.WithWorkingDir(root),
		spectral.WithTimeout(settings.Timeout()),
	)
	if !runner.Detect() {
		return fmt.Errorf("%w (npm install -g @stoplight/spectral-cli)", spectral.ErrLinterNotInstalled)
	}

	renderer := newRenderer(flagJSON)

	handler := func(paths []string) {
		for _, path := range paths {
			result, err := runner.LintFile(ctx, path, settings.Ruleset)
			if err != nil {
				slog.Error("Lint run failed", "path", path, "error", err)
				continue
			}
			renderer.renderResult(path, result)
		}
	}

	watcher, err := watch.New(root, settings.Patterns(), handler, &watch.Options{
		Debounce:   settings.Debounce(),
		IgnoreDirs: []string{".git", "node_modules", ".idea"},
		BufferSize: 256,
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	slog.Info("Watching for changes", "root", root, "debounce", settings.Debounce())
	<-ctx.Done()
	return nil
}

// serveMetrics wires the otel meter provider to a Prometheus endpoint for
// the lifetime of the watch.
func serveMetrics(ctx context.Context, addr string) error {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("creating metrics exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics endpoint failed", "addr", addr, "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		_ = provider.Shutdown(shutdownCtx)
	}()

	slog.Info("Metrics endpoint listening", "addr", addr)
	return nil
}
