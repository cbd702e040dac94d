package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/lazy-eggplant/vs.logger/internal/cmd/client"
	serverrun "github.com/lazy-eggplant/vs.logger/internal/cmd/server"
	cfgpkg "github.com/lazy-eggplant/vs.logger/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vslog",
		Short: "vslog event logging runtime",
		Long:  "vslog records structured events to durable log files and fans them out live to subscribers. This CLI manages the server and basic producer tooling.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the fan-out server (bridge socket, live viewer and archive API)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			socket, _ := cmd.Flags().GetString("socket")
			httpAddr, _ := cmd.Flags().GetString("http")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			archiveOn, _ := cmd.Flags().GetBool("archive")
			archiveSync, _ := cmd.Flags().GetBool("archive-sync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			logFile, _ := cmd.Flags().GetString("log-file")

			cfg := cfgpkg.Default()
			if cfgPath != "" {
				loaded, err := cfgpkg.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			cfgpkg.FromEnv(&cfg)

			// Flags win over file and environment.
			if socket != "" {
				cfg.Socket = socket
			}
			if httpAddr != "" {
				cfg.HTTPAddr = httpAddr
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if cmd.Flags().Changed("archive") {
				cfg.Archive = archiveOn
			}
			if cmd.Flags().Changed("archive-sync") {
				cfg.ArchiveSync = archiveSync
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			if logFile != "" {
				cfg.Log.File = logFile
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, cfg); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Config file (yaml or json)")
	serverStartCmd.Flags().String("socket", "", "Publish-channel unixgram socket path")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (viewer, /ws and archive API)")
	serverStartCmd.Flags().String("data-dir", "", "Archive data directory")
	serverStartCmd.Flags().Bool("archive", false, "Persist broadcast events to the archive")
	serverStartCmd.Flags().Bool("archive-sync", false, "Fsync archive writes")
	serverStartCmd.Flags().String("log-level", os.Getenv("VSLOG_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("VSLOG_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().String("log-file", os.Getenv("VSLOG_LOG_FILE"), "Also append diagnostics to this file")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	rootCmd.AddCommand(clientcmd.NewEmitCommand())
	rootCmd.AddCommand(clientcmd.NewTailCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
