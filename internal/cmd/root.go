// Package cmd implements the civicfeed command line client.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JanConnect/JanConnect-sub001/internal/cache"
	"github.com/JanConnect/JanConnect-sub001/internal/config"
	"github.com/JanConnect/JanConnect-sub001/internal/filter"
	"github.com/JanConnect/JanConnect-sub001/internal/interactions"
	"github.com/JanConnect/JanConnect-sub001/internal/logger"
	"github.com/JanConnect/JanConnect-sub001/internal/output"
	"github.com/JanConnect/JanConnect-sub001/internal/session"
	"github.com/JanConnect/JanConnect-sub001/internal/source"
)

// app carries what every subcommand needs. The session is opened lazily
// so commands like version never touch the store.
type app struct {
	configPath string
	outputFmt  string
	verbose    bool
	demo       bool
	userID     string

	cfg     *config.Config
	printer *output.Printer
	now     func() time.Time

	remote     source.Source
	sess       *session.Session
	closeStore func() error
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "civicfeed",
		Short: "civicfeed - community issue feed",
		Long: `civicfeed browses the community feed of reported civic issues.
Posts are ranked by engagement that fades over a day, and you can
support, escalate, amplify, comment on and bookmark them from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default: ~/.config/civicfeed/config.toml)")
	flags.StringVarP(&a.outputFmt, "output", "o", "", "Output format: text, json, table")
	flags.BoolVar(&a.demo, "demo", false, "Use a generated offline feed instead of the API")
	flags.StringVar(&a.userID, "user", "", "User whose interactions are read and recorded")

	root.AddCommand(
		newFeedCmd(a),
		newTopicsCmd(a),
		newSupportCmd(a),
		newEscalateCmd(a),
		newAmplifyCmd(a),
		newCommentCmd(a),
		newSavedCmd(a),
		newResetCmd(a),
		newLeaderboardCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.demo {
		cfg.Demo.Enabled = true
	}
	if a.userID != "" {
		cfg.User.ID = a.userID
	}
	if a.outputFmt != "" {
		cfg.Output.Format = a.outputFmt
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	if err := logger.Initialize(level, cfg.Log.File, a.verbose); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	a.printer = output.New(format, cmd.OutOrStdout())
	a.printer.Err = cmd.ErrOrStderr()
	a.printer.Now = a.now
	return nil
}

func (a *app) close() error {
	var err error
	if a.closeStore != nil {
		err = a.closeStore()
		a.closeStore = nil
	}
	_ = logger.Close()
	return err
}

// session opens the store and source on first use
func (a *app) session(ctx context.Context) (*session.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	cfg := a.cfg

	if a.remote == nil {
		if cfg.Demo.Enabled {
			a.remote = source.NewDemoSource(cfg.Demo.Seed, cfg.Demo.Posts, a.now())
		} else {
			a.remote = source.NewRESTClient(source.RESTOptions{
				BaseURL: cfg.API.BaseURL,
				Timeout: cfg.APITimeout(),
				Token:   cfg.API.Token,
			})
		}
	}

	store, closeStore, err := interactions.Open(interactions.OpenConfig{
		Driver: cfg.Store.Driver,
		Dir:    cfg.Store.Dir,
		DSN:    cfg.Store.DSN,
		Redis: cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open interaction store: %w", err)
	}
	a.closeStore = closeStore

	loc, err := cfg.UserLocation()
	if err != nil {
		return nil, err
	}
	sess, err := session.New(ctx, cfg.User.ID, a.remote, store, session.Options{
		PageSize: cfg.Feed.PageSize,
		Clock:    a.now,
		Filter: filter.Context{
			UserLocation: loc,
			Municipality: cfg.Feed.Municipality,
			RadiusKm:     cfg.Feed.RadiusKm,
		},
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Debug("Session opened",
		logger.WithUserID(cfg.User.ID),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("demo", cfg.Demo.Enabled),
	)
	a.sess = sess
	return sess, nil
}
