package commands

import (
	"alfred/internal/components/telemetry"
	"alfred/internal/config"
	"alfred/lib/serviceutil"
	libtelemetry "alfred/lib/telemetry"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

type globals struct {
	config    config.Config
	tel       telemetry.API
	telemetry libtelemetry.Telemetry
}

type globalsKey struct{}

func getGlobals(ctx context.Context) *globals {
	return ctx.Value(globalsKey{}).(*globals)
}

var (
	verbose    bool
	configPath string
	dumpHttp   string
	username   string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Show debug logs.")
	flags.StringVar(&configPath, "config", "", fmt.Sprintf("Path to the config file, %s is searched for by default.", config.FileName))
	flags.StringVar(&dumpHttp, "dump-http", "", "Write every http request and response into this directory.")
	flags.StringVar(&username, "username", "", "Login username, prompted for when empty.")
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:           "alfred",
	Short:         "alfred uploads multiple choice questions from a spreadsheet to MyLEO and MySA.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initSlog(verbose)
		if verbose {
			slog.Debug("verbose logging enabled")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		providers, err := libtelemetry.Setup(cmd.Context(), "alfred", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		g := getGlobals(cmd.Context())
		g.config = cfg
		g.tel = telemetry.SlogAPI{}
		g.telemetry = providers
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := g.telemetry.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	ctx = context.WithValue(ctx, globalsKey{}, &globals{})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("alfred", err)
	}
}
