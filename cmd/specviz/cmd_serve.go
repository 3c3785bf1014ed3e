package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-specviz/internal/server"
	"github.com/goliatone/go-specviz/internal/watch"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		addr    string
		origins []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the spec editor over HTTP",
		Long: `Serves the spec index, the editor pages, the export API and the editing
websocket. Drafts go to the configured store (memory, sqlite or redis).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()
			if addr == "" {
				addr = a.cfg.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a, addr, origins)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "extra websocket origin patterns, e.g. localhost:3000")
	return cmd
}

func runServe(ctx context.Context, a *app, addr string, origins []string) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.log.Warn("close draft store", "error", err)
		}
	}()

	opts := []server.Option{
		server.WithOrchestrator(a.orch),
		server.WithLogger(a.log),
		server.WithDebounce(a.cfg.Debounce),
		server.WithWriteTimeout(a.cfg.WriteTimeout),
		server.WithTheme(a.cfg.Theme.Name, a.cfg.Theme.Variant),
		server.WithOriginPatterns(origins...),
	}

	if a.cfg.Watch {
		hub := watch.NewHub()
		watcher, err := watch.New(a.reg, hub, watch.WithLogger(a.log))
		if err != nil {
			return err
		}
		defer watcher.Close()
		go watcher.Run(ctx)
		opts = append(opts, server.WithHub(hub))
	}

	srv, err := server.New(a.loader, store, opts...)
	if err != nil {
		return err
	}
	a.log.Info("serving specs", "count", a.reg.Len(), "draft_driver", a.cfg.Draft.Driver, "watch", a.cfg.Watch)
	return srv.ListenAndServe(ctx, addr)
}
