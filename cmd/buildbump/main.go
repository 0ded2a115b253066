package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"buildbump/internal/action"
	"buildbump/internal/config"
	"buildbump/internal/logging"
	"buildbump/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose      bool
	settingsPath string
	logLevel     string
	logFormat    string

	// Run flags
	configPath    string
	updateIOS     bool
	updateAndroid bool
	dryRun        bool
	strictNumbers bool

	// Resolved per invocation
	cfg      *config.Config
	logger   *zap.Logger
	reporter *action.Reporter
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "buildbump [config-path]",
	Short: "Increment the iOS build number and Android version code of an app config",
	Long: `buildbump increments ios.buildNumber and android.versionCode in a
JavaScript or TypeScript app config (app.config.js, app.config.ts, ...) and
reports the new values as outputs.

Inputs are resolved in order: defaults, .buildbump.yaml/.toml, BUILDBUMP_*
environment variables, GitHub Actions inputs, then explicit flags.

Run as a GitHub Actions step, outputs are written to $GITHUB_OUTPUT and
failures become error annotations. Elsewhere outputs print as name=value lines.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if reporter == nil {
			reporter = action.New()
		}

		var err error
		cfg, err = resolveConfig(cmd)
		if err != nil {
			return err
		}

		opts := logging.Options{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: verbose,
		}
		if reporter.InActions() {
			opts.Mirror = reporter.Debug
		}
		base, err := logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = base.With(zap.String("run", uuid.NewString()))
		reporter.SetLogger(logging.For(logger, logging.CategoryAction))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBump,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default: .buildbump.yaml or .buildbump.toml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")

	rootCmd.Flags().StringVarP(&configPath, "config-path", "c", "", "App config file to update")
	rootCmd.Flags().BoolVar(&updateIOS, "update-ios", false, "Increment ios.buildNumber")
	rootCmd.Flags().BoolVar(&updateAndroid, "update-android", false, "Increment android.versionCode")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report outputs and print a diff without writing")
	rootCmd.Flags().BoolVar(&strictNumbers, "strict-numbers", true, "Fail when a field is not a number instead of writing NaN")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if reporter == nil {
			reporter = action.New()
		}
		reporter.Fail(err)
		os.Exit(1)
	}
}

// resolveConfig layers action inputs and explicitly set flags over the
// settings file and environment.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	path := settingsPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindSettings(wd)
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	c.ApplyInputs(config.ReadInputs(reporter.Input))

	flags := cmd.Flags()
	if flags.Changed("config-path") {
		c.ConfigPath = configPath
	}
	if flags.Changed("update-ios") {
		c.UpdateIOS = updateIOS
	}
	if flags.Changed("update-android") {
		c.UpdateAndroid = updateAndroid
	}
	if flags.Changed("dry-run") {
		c.DryRun = dryRun
	}
	if flags.Changed("strict-numbers") {
		c.StrictNumbers = strictNumbers
	}
	if flags.Changed("log-level") {
		c.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Logging.Format = logFormat
	}
	return c, nil
}

// runBump performs one increment run
func runBump(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg.ConfigPath = args[0]
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.New(reporter, logger).Run(ctx, cfg)
	if err != nil {
		return err
	}

	if res.Diff != nil && !res.Diff.Empty() {
		out := cmd.OutOrStdout()
		if isTerminal(out) {
			fmt.Fprint(out, res.Diff.Styled())
		} else {
			fmt.Fprint(out, res.Diff.Unified())
		}
	}
	printSummary(cmd.ErrOrStderr(), res)
	logger.Debug("run complete",
		zap.Strings("outputs", reporter.OutputNames()),
		zap.Bool("written", res.Written))
	return nil
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

func printSummary(w io.Writer, res *pipeline.Result) {
	if len(res.Changes) == 0 {
		fmt.Fprintln(w, warnStyle.Render("No target fields found in "+res.Path))
		return
	}
	for _, c := range res.Changes {
		fmt.Fprintf(w, "%s %s %s -> %s %s\n",
			okStyle.Render("✓"), c.Field, c.Old, c.New,
			dimStyle.Render(fmt.Sprintf("(%s:%d)", res.Path, c.Line)))
	}
	switch {
	case res.Diff != nil:
		fmt.Fprintln(w, dimStyle.Render("Dry run: "+res.Path+" left unchanged"))
	case res.Written:
		fmt.Fprintln(w, dimStyle.Render("Updated "+res.Path))
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
