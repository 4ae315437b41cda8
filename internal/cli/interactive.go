package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dyike/MoneyScope/config"
	"github.com/dyike/MoneyScope/internal/display"
	"github.com/dyike/MoneyScope/internal/models"
	"github.com/dyike/MoneyScope/pkg/app"
)

// InteractiveSession is the REPL started when no subcommand is given. It runs
// on a Runtime so edits to the config file apply to the next command.
type InteractiveSession struct {
	opts    *rootOptions
	cmd     *cobra.Command
	out     io.Writer
	runtime *app.Runtime
	// ready suppresses the notice for the initial build.
	ready atomic.Bool
}

func runInteractiveMode(cmd *cobra.Command, o *rootOptions) error {
	path, err := o.filePath()
	if err != nil {
		return err
	}
	mgr, err := config.NewManager(config.WithConfigPath(path), config.WithInitialConfig(o.cfg))
	if err != nil {
		return err
	}

	s := &InteractiveSession{opts: o, cmd: cmd, out: cmd.OutOrStdout()}
	rt, err := app.NewRuntime(cmd.Context(), mgr,
		app.WithBuilder(func(ctx context.Context, cfg config.Config) (*app.Engine, error) {
			svc, err := o.newService(ctx, &cfg)
			if err != nil {
				return nil, err
			}
			return app.NewEngine(cfg, svc), nil
		}),
		app.WithReloadHook(s.onReload),
	)
	if err != nil {
		return err
	}
	defer rt.Close()
	s.runtime = rt
	s.ready.Store(true)

	return s.Start(cmd.Context(), cmd.InOrStdin())
}

func (s *InteractiveSession) onReload(evt app.ReloadEvent) {
	if !s.ready.Load() {
		return
	}
	if evt.Err != nil {
		DisplayError(s.out, fmt.Errorf("configuration reload failed, keeping the previous settings: %w", evt.Err))
		return
	}
	DisplayInfo(s.out, "Configuration reloaded.")
}

// Start reads commands from in until exit, EOF or ctx is done.
func (s *InteractiveSession) Start(ctx context.Context, in io.Reader) error {
	DisplayWelcomeBanner(s.out)
	s.showCommands()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(s.out, "MoneyScope> ")
		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				return nil
			}
			input = strings.TrimSpace(line)
		}
		if input == "" {
			continue
		}
		if !s.handle(ctx, strings.Fields(input)) {
			DisplayInfo(s.out, "Thank you for using MoneyScope!")
			return nil
		}
		fmt.Fprintln(s.out)
	}
}

// handle runs one command and reports whether the session continues.
func (s *InteractiveSession) handle(ctx context.Context, parts []string) bool {
	command := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch command {
	case "exit", "quit", "q":
		return false
	case "help", "h", "?":
		s.showCommands()
	case "analyze", "a":
		err = s.analyze(args)
	case "convert", "c":
		err = s.convert(ctx, args)
	case "history", "hist":
		err = s.history(ctx, args)
	case "config", "cfg":
		err = s.config(args)
	case "clear", "cls":
		ClearScreen(s.out)
	default:
		err = fmt.Errorf("unknown command %q; type 'help' for available commands", command)
	}
	if err != nil {
		DisplayError(s.out, err)
	}
	return true
}

func (s *InteractiveSession) showCommands() {
	displaySection(s.out, "Commands")
	fmt.Fprintln(s.out, "  analyze [PAIR]               Analyze a pair such as USD/INR (prompts when omitted)")
	fmt.Fprintln(s.out, "  convert AMOUNT BASE TARGET   Convert at the current rate")
	fmt.Fprintln(s.out, "  history [N]                  Show the last N analyses")
	fmt.Fprintln(s.out, "  config [show|path|set K V]   Inspect or edit the configuration")
	fmt.Fprintln(s.out, "  clear | help | exit")
	fmt.Fprintln(s.out)
}

func (s *InteractiveSession) analyze(args []string) error {
	var pair models.CurrencyPair
	var err error
	switch len(args) {
	case 0:
		pair, err = s.opts.pickPair()
	case 1:
		pair, err = models.ParsePair(args[0])
	default:
		return fmt.Errorf("usage: analyze [PAIR]")
	}
	if err != nil {
		return err
	}
	return runAnalysis(s.cmd, s.runtime.Engine().Service, pair)
}

func (s *InteractiveSession) convert(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: convert AMOUNT BASE TARGET")
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}
	conv, err := s.runtime.Engine().Service.Convert(ctx, amount, args[1], args[2])
	if err != nil {
		return err
	}
	display.Conversion(s.out, conv)
	return nil
}

func (s *InteractiveSession) history(ctx context.Context, args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: history [N]")
		}
		limit = n
	}
	records, err := s.runtime.Engine().Service.History(ctx, limit)
	if err != nil {
		return err
	}
	display.History(s.out, records, time.Now())
	return nil
}

func (s *InteractiveSession) config(args []string) error {
	if len(args) == 0 || args[0] == "show" {
		return showConfig(s.out, s.runtime.Config())
	}
	switch args[0] {
	case "path":
		fmt.Fprintln(s.out, s.runtime.ConfigPath())
		return nil
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: config set KEY VALUE")
		}
		updated, err := setConfigValue(s.runtime.Config(), args[1], args[2])
		if err != nil {
			return err
		}
		return s.runtime.UpdateConfigJSON(updated)
	default:
		return fmt.Errorf("usage: config [show|path|set KEY VALUE]")
	}
}
