package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/debug"
	"github.com/dyike/MoneyScope/internal/display"
	"github.com/dyike/MoneyScope/internal/graph"
	"github.com/dyike/MoneyScope/internal/logger"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/internal/scheduler"
	"github.com/dyike/MoneyScope/internal/service"
	"github.com/dyike/MoneyScope/internal/utils"
)

const version = "v1.0.0"

// rootOptions is shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool

	cfg      *config.Config
	debugger *debug.Debugger

	// newService is swapped in tests.
	newService func(ctx context.Context, cfg *config.Config) (*service.Service, error)
	// pickPair asks for a pair when analyze gets no argument.
	pickPair func() (models.CurrencyPair, error)
}

func newRootOptions() *rootOptions {
	return &rootOptions{
		newService: func(ctx context.Context, cfg *config.Config) (*service.Service, error) {
			return service.New(ctx, cfg)
		},
		pickPair: PromptForPair,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newRootOptions())
}

func newRootCmd(o *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moneyscope",
		Short: "MoneyScope - AI-Powered Forex Analysis",
		Long: `MoneyScope collects the exchange rate, recent news and a market trend snapshot
for a currency pair, has a language model analyse them and writes a markdown report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.debugger != nil {
				o.debugger.Stop()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cmd, o)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(o))
	rootCmd.AddCommand(newConvertCmd(o))
	rootCmd.AddCommand(newHistoryCmd(o))
	rootCmd.AddCommand(newScheduleCmd(o))
	rootCmd.AddCommand(newConfigCmd(o))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&o.configPath, "config", "", "Configuration file path (environment only when empty)")

	return rootCmd
}

// setup loads the configuration, configures logging and starts the eino
// debugger when enabled.
func (o *rootOptions) setup(ctx context.Context) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	if o.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	o.cfg = cfg

	o.debugger = debug.New(cfg)
	return o.debugger.Start(ctx)
}

// loadConfig reads the file given by --config, or the environment.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Load()
	}
	env, err := config.Load()
	if err != nil {
		return nil, err
	}
	mgr, err := config.NewManager(config.WithConfigPath(o.configPath), config.WithInitialConfig(env))
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()
	return &cfg, nil
}

func newAnalyzeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [PAIR]",
		Short: "Analyze a currency pair and write a report",
		Long: `Run the full analysis for a currency pair such as USD/INR.
Without an argument the base and target currencies are selected interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pair models.CurrencyPair
			var err error
			if len(args) == 1 {
				pair, err = models.ParsePair(args[0])
			} else {
				pair, err = o.pickPair()
			}
			if err != nil {
				return err
			}

			svc, err := o.newService(cmd.Context(), o.cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			return runAnalysis(cmd, svc, pair)
		},
	}
}

func runAnalysis(cmd *cobra.Command, svc *service.Service, pair models.CurrencyPair) error {
	out := cmd.OutOrStdout()
	if err := svc.CheckKeys(); err != nil {
		return err
	}

	DisplayInfo(out, fmt.Sprintf("Starting analysis for %s", pair))
	progress := display.NewProgressPrinter(out)
	start := time.Now()
	res, err := svc.AnalyzePair(cmd.Context(), pair, graph.WithObserver(progress.Observe))
	if err != nil {
		progress.Summary()
		return fmt.Errorf("analysis failed: %w", err)
	}
	display.Report(out, res)
	DisplaySuccess(out, fmt.Sprintf("Analysis completed in %s", time.Since(start).Round(time.Second)))
	return nil
}

func newConvertCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "convert AMOUNT BASE TARGET",
		Short:   "Convert an amount at the current exchange rate",
		Example: "  moneyscope convert 100 USD INR",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			svc, err := o.newService(cmd.Context(), o.cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			conv, err := svc.Convert(cmd.Context(), amount, args[1], args[2])
			if err != nil {
				return err
			}
			display.Conversion(cmd.OutOrStdout(), conv)
			return nil
		},
	}
}

func newHistoryCmd(o *rootOptions) *cobra.Command {
	var limit int
	var csvPath string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := o.newService(cmd.Context(), o.cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			records, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if csvPath != "" {
				if err := utils.ExportRunsCSV(csvPath, records); err != nil {
					return err
				}
				DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("%d run(s) exported to %s", len(records), csvPath))
				return nil
			}
			display.History(cmd.OutOrStdout(), records, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Export the runs to a CSV file instead of printing them")
	return cmd
}

func newScheduleCmd(o *rootOptions) *cobra.Command {
	var spec string
	var runNow bool
	cmd := &cobra.Command{
		Use:   "schedule PAIR...",
		Short: "Analyze pairs on a cron schedule until interrupted",
		Example: `  moneyscope schedule --cron "0 8 * * 1-5" USD/INR EUR/USD
  moneyscope schedule --cron @daily GBP/JPY`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := o.newService(ctx, o.cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := svc.CheckKeys(); err != nil {
				return err
			}

			s, err := scheduler.New(ctx, spec, args, func(ctx context.Context, pair models.CurrencyPair) error {
				res, err := svc.AnalyzePair(ctx, pair)
				if err != nil {
					return err
				}
				DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("%s report saved to %s", pair, res.FilePath))
				return nil
			})
			if err != nil {
				return err
			}
			if runNow {
				s.RunNow()
			}
			s.Start()
			DisplayInfo(cmd.OutOrStdout(), fmt.Sprintf("Scheduled %d pair(s) with %q; press Ctrl+C to stop", len(args), spec))
			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression, five fields or a descriptor such as @daily")
	cmd.Flags().BoolVar(&runNow, "now", false, "Run once immediately before waiting for the schedule")
	_ = cmd.MarkFlagRequired("cron")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "MoneyScope %s\n", version)
			fmt.Fprintln(cmd.OutOrStdout(), "AI-Powered Forex Analysis")
		},
	}
}

// errorMessage unwraps the missing keys case into a hint for the user.
func errorMessage(err error) string {
	if errors.Is(err, service.ErrMissingKeys) {
		return err.Error() + ". Set them in the environment, a .env file or with 'config set'."
	}
	return err.Error()
}
