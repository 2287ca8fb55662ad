package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stopwatch_tui/internal"
	"stopwatch_tui/internal/config"
	"stopwatch_tui/internal/location"
	"stopwatch_tui/internal/logging"
	"stopwatch_tui/internal/store"
	"stopwatch_tui/internal/stopwatch"
)

// GlobalFlags holds the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
}

// HistoryFlags holds flags for the history command.
type HistoryFlags struct {
	Page  int
	Links bool
}

// flagKeys maps persistent flag names to the config keys they override.
var flagKeys = map[string]string{
	"db":        "db_path",
	"log-file":  "log.file",
	"log-level": "log.level",
	"page-size": "page_size",
}

func newRootCommand() *cobra.Command {
	v := config.New()
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:           "stopwatch",
		Short:         "Terminal stopwatch with a location-tagged history",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), v, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "config file (default "+config.ConfigDir()+"/config.yaml)")
	pf.String("db", "", "history database file")
	pf.String("log-file", "", "log file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Int("page-size", 0, "history rows per page")

	for name, key := range flagKeys {
		// flag values only win when set on the command line
		if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		createHistoryCommand(v, flags),
		createResetCommand(v, flags),
	)
	return root
}

func createHistoryCommand(v *viper.Viper, flags *GlobalFlags) *cobra.Command {
	hf := &HistoryFlags{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print one page of recorded intervals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), v, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			a.sw.GoTo(hf.Page)
			view := a.sw.Page()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, internal.RenderHistory(view, a.cfg.PageSize))
			if hf.Links {
				for _, l := range internal.LocationLinks(view.Records) {
					fmt.Fprintln(out, l)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&hf.Page, "page", 1, "page to print (1 is newest)")
	cmd.Flags().BoolVar(&hf.Links, "links", false, "list map links for recorded coordinates")
	return cmd
}

func createResetCommand(v *viper.Viper, flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all recorded history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), v, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sw.Reset(cmd.Context()); err != nil {
				return errors.Wrap(err, "reset history")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
}

func runTUI(ctx context.Context, v *viper.Viper, flags *GlobalFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, v, flags)
	if err != nil {
		return err
	}
	defer a.Close()

	m := internal.NewModel(ctx, a.sw, internal.Options{
		FrameInterval: a.cfg.FrameInterval,
		PageSize:      a.cfg.PageSize,
		Logger:        a.logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run program")
	}
	return nil
}

// app bundles everything a command needs, built from configuration.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *store.SQLite
	sw     *stopwatch.Stopwatch

	closers   []io.Closer
	logCloser io.Closer
	errOut    io.Writer
}

func setup(ctx context.Context, v *viper.Viper, flags *GlobalFlags) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(v, flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(logging.Config{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, logCloser: logCloser, errOut: os.Stderr}

	st, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		a.Close()
		return nil, errors.Wrapf(err, "open history database %s", cfg.DBPath)
	}
	a.store = st
	a.closers = append(a.closers, st)

	a.sw = stopwatch.New(
		stopwatch.WithStore(st),
		stopwatch.WithLogger(logger),
		stopwatch.WithPageSize(cfg.PageSize),
		stopwatch.WithResolver(newResolver(cfg.Location)),
	)
	n := a.sw.Load(ctx)
	logger.Info("stopwatch ready", "db", cfg.DBPath, "records", n, "location", cfg.Location.Mode)
	return a, nil
}

// Close releases resources newest first, then the log file. The logger is
// not used once its file is closed.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close", "err", err)
		}
	}
	if a.logCloser == nil {
		return
	}
	if err := a.logCloser.Close(); err != nil {
		fmt.Fprintf(a.errOut, "Error: close log file: %v\n", err)
	}
}

func newResolver(c config.LocationConfig) location.Resolver {
	switch c.Mode {
	case config.LocationStatic:
		return location.Static{Position: location.Position{Latitude: c.Latitude, Longitude: c.Longitude}}
	case config.LocationHTTP:
		return location.NewHTTP(c.Endpoint)
	default:
		return location.Disabled{}
	}
}
