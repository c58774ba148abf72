// Package app wires configuration into the running pieces: the registry
// store and service, the selection state, the pattern compiler and tracing.
// Both the one-shot CLI commands and the interactive session build on it.
package app

import (
	"context"
	"errors"
	"fmt"

	appinstance "github.com/zjrosen/hopper/internal/application/instance"
	"github.com/zjrosen/hopper/internal/config"
	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/flags"
	"github.com/zjrosen/hopper/internal/infrastructure/sqlite"
	"github.com/zjrosen/hopper/internal/infrastructure/yamlstore"
	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/navigation"
	"github.com/zjrosen/hopper/internal/selection"
	"github.com/zjrosen/hopper/internal/textbuf"
	"github.com/zjrosen/hopper/internal/tracing"
)

// App owns the long-lived services for one process.
type App struct {
	cfg          config.Config
	configPath   string
	registryPath string

	flags    *flags.Registry
	service  *appinstance.Service
	state    *selection.State
	compiler *textbuf.Compiler
	tracing  *tracing.Provider
	db       *sqlite.DB
}

// New builds an App from cfg. configPath is the config file in use; the
// yaml backend stores instances there unless registry.path says otherwise.
func New(ctx context.Context, cfg config.Config, configPath string) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		cfg:        cfg,
		configPath: configPath,
		flags:      flags.New(cfg.Flags),
		state:      selection.NewState(),
		compiler:   textbuf.NewCompiler(cfg.Navigation.PatternCacheTTL, cfg.Navigation.MatchTimeout),
	}
	a.registryPath = cfg.RegistryPath(configPath)
	if a.registryPath == "" {
		return nil, errors.New("cannot resolve registry path: set registry.path")
	}

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	a.tracing = tp

	store, err := a.openStore()
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	opts := []appinstance.Option{appinstance.WithTracer(tp.Tracer())}
	if a.flags.Enabled(flags.FlagValidatePatterns) {
		opts = append(opts, appinstance.WithPatternValidator(ValidatePattern))
	}
	svc, err := appinstance.NewService(ctx, store, opts...)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("loading instances from %s: %w", a.registryPath, err)
	}
	a.service = svc

	log.Info(log.CatConfig, "Application ready",
		"backend", cfg.Registry.Backend, "registry", a.registryPath, "instances", len(svc.Names()))
	return a, nil
}

func (a *App) openStore() (appinstance.Store, error) {
	switch a.cfg.Registry.Backend {
	case config.BackendSQLite:
		db, err := sqlite.NewDB(a.registryPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite registry %s: %w", a.registryPath, err)
		}
		a.db = db
		return db.InstanceStore(), nil
	default:
		return yamlstore.New(a.registryPath), nil
	}
}

// ValidatePattern rejects regexes the text substrate cannot compile.
// Literal sets are always compilable once quoted.
func ValidatePattern(p instance.Pattern) error {
	if p.Kind() != instance.KindRegex {
		return nil
	}
	return textbuf.ValidatePattern(p.Expr())
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config { return a.cfg }

// ConfigPath returns the config file in use.
func (a *App) ConfigPath() string { return a.configPath }

// RegistryPath returns the file backing the instance registry.
func (a *App) RegistryPath() string { return a.registryPath }

// Flags returns the feature flags.
func (a *App) Flags() *flags.Registry { return a.flags }

// Service returns the instance registry service.
func (a *App) Service() *appinstance.Service { return a.service }

// State returns the process-wide selection.
func (a *App) State() *selection.State { return a.state }

// Engine returns a hop engine over the registry that falls back to chooser
// when nothing usable is selected.
func (a *App) Engine(chooser selection.Chooser) *navigation.Engine {
	return navigation.NewEngine(a.service, a.state, chooser,
		navigation.WithLookbackWindow(a.cfg.Navigation.LookbackWindow),
		navigation.WithTracer(a.tracing.Tracer()),
	)
}

// NewBuffer wraps text in a cursor sharing the App's pattern cache.
func (a *App) NewBuffer(text string) *textbuf.Buffer {
	return textbuf.New(text, textbuf.WithCompiler(a.compiler))
}

// Close releases the service, database and tracer. Safe on a partially
// built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.service != nil {
		a.service.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}
