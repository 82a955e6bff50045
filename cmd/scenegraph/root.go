package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/scenegraph"
	"github.com/meikuraledutech/scenegraph/internal/config"
	"github.com/meikuraledutech/scenegraph/internal/logging"
	"github.com/meikuraledutech/scenegraph/postgres"
	"github.com/meikuraledutech/scenegraph/sqlite"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "scenegraph",
		Short:         "Node graph scene store",
		Long:          bold.Sprint("scenegraph") + ": edit, inspect and persist node graph scenes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			return nil
		},
	}
	cmd.SetVersionTemplate("scenegraph {{ .Version }}\n")
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "scenegraph.toml", "Path to the TOML config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(a),
		inspectCmd(a),
		scenesCmd(a),
		schemaCmd(a),
	)
	return cmd
}

// newGraph builds an empty graph using the configured environment.
func (a *app) newGraph(opts ...scenegraph.Option) *scenegraph.Graph {
	opts = append([]scenegraph.Option{
		scenegraph.WithLogger(a.logger),
		scenegraph.WithEnvironment(a.cfg.Graph.Environment),
	}, opts...)
	return scenegraph.New(opts...)
}

// openStore opens the configured persister. The returned close function is
// never nil.
func (a *app) openStore(ctx context.Context) (scenegraph.Persister, func(), error) {
	switch a.cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, a.cfg.Storage.DSN)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect: %w", err)
		}
		return postgres.New(pool), pool.Close, nil
	case "sqlite":
		s, err := sqlite.Open(a.cfg.Storage.DSN)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, func() {}, nil
}

// requireStore is openStore for commands that cannot run without storage.
func (a *app) requireStore(ctx context.Context) (scenegraph.Persister, func(), error) {
	store, closeFn, err := a.openStore(ctx)
	if err == nil && store == nil {
		err = fmt.Errorf("no storage configured: set [storage] in %s or DATABASE_URL", a.configPath)
	}
	return store, closeFn, err
}
