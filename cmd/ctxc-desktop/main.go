package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/ctxc-desktop/internal/backend"
	"github.com/username/ctxc-desktop/internal/config"
	"github.com/username/ctxc-desktop/internal/daemon"
	"github.com/username/ctxc-desktop/internal/notify"
	"github.com/username/ctxc-desktop/internal/tray"
	"github.com/username/ctxc-desktop/internal/webview"
	"github.com/username/ctxc-desktop/internal/window"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const appTitle = "Context Cache"

var (
	configPath string
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ctxc-desktop",
		Short: "Context Cache desktop shell",
		Long:  "Tray icon and window for the Context Cache backend: open the UI, trigger an ingest, quit",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./desktop.yaml or ~/.config/context-cache/desktop.yaml)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(healthCmd())

	return rootCmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the tray icon and the hidden main window (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell()
		},
	}
}

func ingestCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Trigger an ingest of all sources once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := backend.NewClient(cfg.Host, logger)
			resp, err := client.Ingest(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✅ %s", tray.IngestMessage)
			if resp.JobID != "" {
				fmt.Fprintf(out, " (job %s)", resp.JobID)
			}
			fmt.Fprintln(out)

			keys := make([]string, 0, len(resp.Stats))
			for k := range resp.Stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "   • %s: %d\n", k, resp.Stats[k])
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Give up waiting for the backend after this long")

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client := backend.NewClient(cfg.Host, logger)
			ok, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("backend at %s reported not ok", cfg.Host())
			}

			fmt.Fprintf(out, "✅ Backend at %s is healthy\n", cfg.Host())
			return nil
		},
	}
}

// runShell wires the tray, window, backend and notifications and blocks
// until the process quits.
func runShell() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("Starting desktop shell",
		zap.String("host", cfg.Host()),
		zap.String("config", cfg.FileUsed()))

	if err := config.ValidateHost(cfg.Host()); err != nil {
		logger.Warn("Backend host is not usable, ingest requests will fail",
			zap.String("env", config.EnvHost),
			zap.Error(err))
	}

	cfg.Watch(func(path, op string) {
		logger.Info("Config file changed, restart to apply",
			zap.String("path", path),
			zap.String("op", op))
	})

	app := webview.NewApp(webview.Options{
		Title:       appTitle,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		StartHidden: cfg.Window.StartHidden,
		Host:        cfg.Host,
	}, logger.Named("webview"))

	var toast notify.Toaster
	if cfg.Notify.Desktop {
		toast = notify.DesktopToaster()
	}

	dispatcher := tray.NewDispatcher(
		window.NewManager(app, logger.Named("window")),
		backend.NewClient(cfg.Host, logger.Named("backend")),
		notify.NewEmitter(app, toast, appTitle, logger.Named("notify")),
		nil,
		logger.Named("tray"),
	)

	controller := tray.NewController(tray.Options{
		Title:        cfg.Tray.Title,
		Tooltip:      cfg.Tray.Tooltip,
		ReadyTimeout: cfg.Tray.GetReadyTimeout(),
	}, logger.Named("tray"))

	d := daemon.NewDaemon(app, daemon.ControllerStarter(controller), dispatcher, logger)
	return d.Start()
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
