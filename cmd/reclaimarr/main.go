// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/reclaimarr/internal/api"
	"github.com/autobrr/reclaimarr/internal/arr"
	"github.com/autobrr/reclaimarr/internal/buildinfo"
	"github.com/autobrr/reclaimarr/internal/config"
	"github.com/autobrr/reclaimarr/internal/domain"
	"github.com/autobrr/reclaimarr/internal/logger"
	"github.com/autobrr/reclaimarr/internal/qbittorrent"
	"github.com/autobrr/reclaimarr/internal/services/notifications"
	"github.com/autobrr/reclaimarr/internal/services/reclaim"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "reclaimarr",
		Short: "Automated storage reclamation for Sonarr and Radarr libraries",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file or directory")

	rootCmd.AddCommand(serveCommand(&configPath))
	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(generateConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := config.New(*configPath, buildinfo.Version)
			if err != nil {
				return err
			}
			cfg := appCfg.Config

			logger.Init(cfg)
			appCfg.DynamicReload(func(updated *domain.Config) {
				logger.SetLogLevel(updated.LogLevel)
			})

			log.Info().Str("version", buildinfo.Version).Bool("dryRun", cfg.DryRun).
				Msg("starting reclaimarr")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool := qbittorrent.NewPool(ctx, cfg.Qbittorrent)
			stores := make([]reclaim.Store, 0, len(pool))
			for _, inst := range pool {
				stores = append(stores, inst)
			}

			var sonarr, radarr arr.CatalogService
			if cfg.Sonarr != nil {
				sonarr = arr.NewSonarr(cfg.Sonarr, cfg.ProtectedTag, cfg.HistoryLimit)
			}
			if cfg.Radarr != nil {
				radarr = arr.NewRadarr(cfg.Radarr, cfg.ProtectedTag, cfg.HistoryLimit)
			}

			notifier, err := notifications.NewService(cfg.NotificationURLs)
			if err != nil {
				return fmt.Errorf("invalid notification urls: %w", err)
			}
			defer notifier.Close()

			var registry *prometheus.Registry
			var metrics *reclaim.Metrics
			if cfg.MetricsEnabled {
				registry = prometheus.NewRegistry()
				registry.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				metrics = reclaim.NewMetrics(registry)
			}

			reclaimer := reclaim.NewService(cfg, sonarr, radarr, stores, notifier, metrics)
			defer reclaimer.Shutdown()

			server := api.NewServer(cfg, reclaimer, registry)
			if err := server.ListenAndServe(ctx); err != nil {
				return err
			}

			log.Info().Msg("shutdown complete")
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reclaimarr %s", buildinfo.Version)
			if buildinfo.Commit != "" {
				fmt.Printf(" (%s)", buildinfo.Commit)
			}
			if buildinfo.Date != "" {
				fmt.Printf(" built %s", buildinfo.Date)
			}
			fmt.Println()
		},
	}
}

const sampleConfig = `# reclaimarr configuration

host = "0.0.0.0"
port = 4343
logLevel = "INFO"
#logPath = "/var/log/reclaimarr/reclaimarr.log"

# Deletions are simulated until this is set to false.
dryRun = true

# Seconds of webhook silence before a series batch is processed.
debounceSeconds = 20

# Minimum seeding time before a torrent may be deleted (default 30 days).
minSeedSeconds = 2592000

# Library items with this tag are never evicted.
protectedTag = "no_delete"

metricsEnabled = false

# Notification URLs (telegram://token@telegram?chats=id, discord://..., etc.)
#notificationUrls = []

[sonarr]
url = "http://localhost:8989"
apiKey = ""
diskPath = "/data/tv"
freeSpaceThresholdGb = 100

[radarr]
url = "http://localhost:7878"
apiKey = ""
diskPath = "/data/movies"
freeSpaceThresholdGb = 100

[[qbittorrent]]
name = "qbittorrent"
host = "http://localhost:8080"
username = "admin"
password = ""
`

func generateConfigCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Write a sample config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(outDir, "config.toml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "dir", ".", "directory to write config.toml into")
	return cmd
}
