package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prismwm/prism/internal/config"
	"github.com/prismwm/prism/internal/logger"
	"github.com/prismwm/prism/internal/server"
)

var (
	runBackend string
	runDemo    int
	configFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the compositor daemon",
	Long: `Run the compositor daemon. Windows are composed into frames on the
configured output until the process is interrupted.`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().StringVarP(&runBackend, "backend", "b", "", "Presenter backend (null, png)")
	runCmd.Flags().IntVar(&runDemo, "demo", 0, "Create N animated demo windows")
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file path")

	_ = viper.BindPFlag("display.backend", runCmd.Flags().Lookup("backend"))
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		config.SetConfigPath(configFile)
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.Get()
	if cfg.Logging.LogLevel != "" {
		logger.SetLevelFromString(cfg.Logging.LogLevel)
	}

	srv, err := server.New(cfg, server.NewNoopTuner(), socketPath)
	if err != nil {
		return fmt.Errorf("failed to create display server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start display server: %w", err)
	}

	var producer *server.PatternProducer
	if runDemo > 0 {
		producer, err = server.NewPatternProducer(srv.Registry(), runDemo)
		if err != nil {
			logger.Errorf("demo windows: %v", err)
		} else {
			producer.Start(ctx)
			logger.Info("demo producers started", "windows", runDemo)
		}
	}

	logger.Info("compositor running", "socket", srv.SocketPath())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig)

	if producer != nil {
		producer.Stop()
	}
	return srv.Stop()
}
