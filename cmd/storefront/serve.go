package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storefront/internal/config"
	"github.com/vango-dev/storefront/internal/server"
)

type serveFlags struct {
	addr     string
	base     string
	fixture  string
	apiURL   string
	backend  string
	watch    bool
	noMetric bool
	logLevel string
}

func serveCmd(dir *string) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront server",
		Long: `Start the storefront HTTP server.

Settings come from storefront.toml or storefront.json in --dir; flags
override them.

Examples:
  storefront serve
  storefront serve --addr=:3000 --base=/shop
  storefront serve --fixture=products.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&f.addr, "addr", "a", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&f.base, "base", "", "Base path pages are served under")
	cmd.Flags().StringVar(&f.fixture, "fixture", "", "JSON or YAML product fixture")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Remote product API base URL")
	cmd.Flags().StringVar(&f.backend, "storage", "", "Cart storage backend: memory, sql or s3")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Reload the fixture when it changes")
	cmd.Flags().BoolVar(&f.noMetric, "no-metrics", false, "Disable the metrics endpoint")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if flags.Changed("base") {
		cfg.Server.Base = f.base
	}
	if flags.Changed("fixture") {
		cfg.Catalog.Fixture = f.fixture
		cfg.Catalog.APIURL = ""
	}
	if flags.Changed("api-url") {
		cfg.Catalog.APIURL = f.apiURL
		cfg.Catalog.Fixture = ""
	}
	if flags.Changed("storage") {
		cfg.Storage.Backend = f.backend
	}
	if flags.Changed("watch") {
		cfg.Catalog.Watch = f.watch
	}
	if flags.Changed("no-metrics") {
		cfg.Metrics.Enabled = !f.noMetric
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, server.WithLogger(logger))
	if err != nil {
		return err
	}
	defer srv.Close()

	out := cmd.OutOrStdout()
	printBanner(out)
	info(out, "serve %s", version)
	fmt.Fprintln(out)
	success(out, "Listening on %s%s/", cfg.Server.Addr, cfg.Server.Base)
	if cfg.Catalog.Watch {
		info(out, "Watching %s", cfg.FixturePath())
	}
	if cfg.Metrics.Enabled {
		info(out, "Metrics at %s", cfg.Metrics.Path)
	}
	fmt.Fprintln(out)

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
