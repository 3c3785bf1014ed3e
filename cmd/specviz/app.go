package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-specviz/internal/config"
	"github.com/goliatone/go-specviz/internal/logger"
	internaltheme "github.com/goliatone/go-specviz/internal/theme"
	"github.com/goliatone/go-specviz/pkg/draft"
	"github.com/goliatone/go-specviz/pkg/orchestrator"
	"github.com/goliatone/go-specviz/pkg/registry"
	"github.com/goliatone/go-specviz/pkg/specs"
	"github.com/goliatone/go-specviz/pkg/widgets"
)

// app is the wiring every subcommand starts from.
type app struct {
	cfg    config.Config
	log    *logger.Logger
	reg    *registry.Registry
	loader *specs.Loader
	orch   *orchestrator.Orchestrator

	selector  *internaltheme.Selector
	themeName string
}

func newApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	mode := cfg.Log.Mode
	if flags.logMode != "" {
		mode = flags.logMode
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	loader := specs.NewLoader(reg, specs.WithHTTP(cfg.FetchTimeout))

	manifests, err := internaltheme.LoadManifests(cfg.Theme.Manifests...)
	if err != nil {
		return nil, err
	}
	themeName := cfg.Theme.Name
	if themeName == "" {
		themeName = internaltheme.DefaultName
	}
	selector, err := internaltheme.NewSelector(themeName, cfg.Theme.Variant, manifests...)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, reg: reg, loader: loader, selector: selector, themeName: themeName}
	if a.orch, err = a.orchestrator(); err != nil {
		return nil, err
	}
	return a, nil
}

// orchestrator builds a pipeline over the app's loader and theme with extra
// options applied last.
func (a *app) orchestrator(extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	cache, err := widgets.NewPreviewCache(a.cfg.NestedCacheSize)
	if err != nil {
		return nil, err
	}
	opts := []orchestrator.Option{
		orchestrator.WithLoader(a.loader),
		orchestrator.WithLogger(a.log),
		orchestrator.WithThemeSelector(a.selector, internaltheme.Config, a.themeName, a.cfg.Theme.Variant),
		orchestrator.WithPreviewCache(cache),
	}
	return orchestrator.New(append(opts, extra...)...), nil
}

// openStore opens the configured draft backend.
func (a *app) openStore(ctx context.Context) (draft.Store, error) {
	store, err := draft.Open(ctx, a.cfg.Draft)
	if err != nil {
		return nil, fmt.Errorf("open draft store: %w", err)
	}
	return store, nil
}

func (a *app) close() {
	a.log.Sync()
}
