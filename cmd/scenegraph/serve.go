package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/meikuraledutech/scenegraph"
	"github.com/meikuraledutech/scenegraph/server"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	var addr, scene string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a scene graph over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			g := a.newGraph()
			if scene != "" {
				if err := g.Read(scene); err != nil && !errors.Is(err, scenegraph.ErrFileNotFound) {
					return err
				}
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := server.New(g, store, a.logger).App()
			errc := make(chan error, 1)
			go func() { errc <- srv.Listen(addr) }()
			a.logger.Info("listening", "addr", addr, "storage", a.cfg.Storage.Driver)

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")
			return srv.ShutdownWithContext(context.Background())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides [server] addr)")
	cmd.Flags().StringVar(&scene, "scene", "", "Scene file to load at startup")
	return cmd
}
