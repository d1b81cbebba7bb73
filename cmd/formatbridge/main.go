package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sliink/formatbridge/internal/api"
	"github.com/sliink/formatbridge/internal/config"
	"github.com/sliink/formatbridge/internal/core"
	"github.com/sliink/formatbridge/internal/watcher"
)

var (
	configFile string
	dataDir    string
	apiPort    int
	apiHost    string
	remoteURL  string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "formatbridge",
		Short: "Format Bridge - translate CSV/XML drops into a JSON/REST/event world and back",
		RunE:  runBridge,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Parent directory for input/output/api-bridge/exports")
	rootCmd.PersistentFlags().IntVar(&apiPort, "api-port", 0, "API server port")
	rootCmd.PersistentFlags().StringVar(&apiHost, "api-host", "", "API server host")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote-url", "", "Submit bridged records to this remote bridge instead of the local store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// Flags override file and environment settings.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if apiPort != 0 {
		cfg.Port = apiPort
	}
	if apiHost != "" {
		cfg.Host = apiHost
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	store := core.NewTransactionStore(logger)
	bus := core.NewEventBus(cfg.SubscriptionBuffer, logger)
	exporter := core.NewExporter(store, cfg.ExportDir(), logger)
	pipeline := core.NewTransformPipeline(cfg.OutputDir(), bus, logger)

	var submitter core.Submitter = core.DirectSubmitter{Store: store}
	if remoteURL != "" {
		submitter = api.NewClient(remoteURL, api.DefaultSubmitTimeout)
	}
	bridge := core.NewBridge(submitter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchOpts := []watcher.Option{
		watcher.WithSettleDelay(cfg.SettleDelay),
		watcher.WithDebounceWindow(cfg.DebounceWindow),
	}

	inputWatcher, err := watcher.New(cfg.InputDir(), pipeline.OnFileArrival, logger, watchOpts...)
	if err != nil {
		return err
	}
	bridgeWatcher, err := watcher.New(cfg.BridgeDir(), bridge.OnFileArrival, logger, watchOpts...)
	if err != nil {
		return err
	}

	if err := inputWatcher.Start(ctx); err != nil {
		return err
	}
	defer inputWatcher.Stop()

	if err := bridgeWatcher.Start(ctx); err != nil {
		return err
	}
	defer bridgeWatcher.Stop()

	apiServer := api.NewAPI(store, bus, exporter, cfg.Host, cfg.Port, logger)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("starting API server")
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("API server error")
		}
	}()

	logger.Info().
		Str("input", cfg.InputDir()).
		Str("bridge", cfg.BridgeDir()).
		Msg("format bridge is running, press Ctrl+C to stop")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API server shutdown error")
	}

	return nil
}

// newLogger builds the colored console logger the bridge reports through.
func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
