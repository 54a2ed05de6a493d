// Command console is the Fraud Resolution Fabric operator console: a
// terminal UI for triaging fraud alerts and following the backend workflow
// stream for a selected alert.
//
// Usage:
//
//	fabric-console [--api URL] [--data-dir DIR] [--log-level LEVEL]
//
// The API base URL persists across runs once set; the data directory holds
// durable state, logs, CSV exports, and archived cases.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/archive"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/config"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/logging"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/reconcile"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/status"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/stream"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/ui"
)

var (
	flagAPI      string
	flagDataDir  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "fabric-console",
	Short: "Operator console for the fraud resolution workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagAPI, "api", "", "backend base URL (persisted once set)")
	rootCmd.Flags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.fraudfabric)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func run(ctx context.Context) error {
	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = config.DefaultDir()
	}
	log := logging.New(dataDir, flagLogLevel)
	defer log.Sync()

	state := config.Load(dataDir)
	if flagAPI != "" && flagAPI != state.APIBaseURL {
		state.APIBaseURL = flagAPI
		if err := config.Save(dataDir, state); err != nil {
			log.Debug("persisting base URL override failed", zap.Error(err))
		}
	}

	client := api.NewClient(state.APIBaseURL, log)
	store := reconcile.NewStore()
	broadcast := status.New()
	arch := archive.New(dataDir, log)

	app := ui.New(ctx, ui.Deps{
		Client:    client,
		Store:     store,
		Broadcast: broadcast,
		Archive:   arch,
		DataDir:   dataDir,
		State:     state,
		Log:       log,
	})
	streams := stream.NewManager(client, store, broadcast, app.Notify, log)
	app.SetStreams(streams)

	log.Info("console starting", zap.String("api", client.BaseURL()), zap.String("dataDir", dataDir))
	go func() {
		log.Info("backend health", zap.Bool("ok", client.Health(ctx)))
	}()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
