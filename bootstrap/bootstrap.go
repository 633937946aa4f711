// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file, falling back to MODHOST_*
// environment variables when no file exists.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artpar/modhost/adapters/auth"
	"github.com/artpar/modhost/adapters/clock"
	"github.com/artpar/modhost/adapters/environment"
	"github.com/artpar/modhost/adapters/hasher"
	apihttp "github.com/artpar/modhost/adapters/http"
	modulehttp "github.com/artpar/modhost/adapters/http/modules"
	"github.com/artpar/modhost/adapters/idgen"
	"github.com/artpar/modhost/adapters/memory"
	"github.com/artpar/modhost/adapters/metrics"
	"github.com/artpar/modhost/adapters/sqlite"
	"github.com/artpar/modhost/app"
	"github.com/artpar/modhost/config"
	"github.com/artpar/modhost/core/events"
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/modules"
	"github.com/artpar/modhost/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	Store      ports.OptionStore
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	Bus      *events.Bus
	Env      *environment.Live
	Registry *module.Registry
	Options  *app.OptionsService
	Settings *app.SettingsService
	Tokens   *auth.TokenService

	holder       *config.Holder
	promRegistry *prometheus.Registry
	events       events.Factory
}

// Options provides optional configuration for application initialization.
type Options struct {
	// ConfigPath is the YAML file to load. When it does not exist the
	// configuration is built from environment variables.
	ConfigPath string

	// HotReload watches ConfigPath and SIGHUP for changes while running.
	HotReload bool

	// Config, when set, is used as is and ConfigPath is ignored.
	Config *config.Config

	// Version is reported by /version.
	Version string

	// LogOutput receives log lines. Defaults to stdout.
	LogOutput io.Writer
}

// New creates and initializes the application. Modules are registered and
// initialized against the configured store before New returns.
func New(opts Options) (*App, error) {
	a := &App{}

	if err := a.initConfig(opts); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	a.Logger = setupLogger(a.Config.Logging, opts.LogOutput)

	if opts.HotReload && opts.Config == nil && opts.ConfigPath != "" {
		h, err := config.NewHolder(opts.ConfigPath, a.Logger.With().Str("component", "config").Logger())
		if err != nil {
			return nil, fmt.Errorf("init config: %w", err)
		}
		a.holder = h
		a.Config = h.Get()
		a.Logger.Info().Str("path", h.Path()).Msg("config hot reload enabled")
	}

	a.Logger.Info().
		Str("mode", a.Config.Environment.Mode).
		Str("driver", a.Config.Database.Driver).
		Msg("initializing modhost")

	a.Env = environment.New(factsFrom(a.Config.Environment))

	if err := a.initStore(); err != nil {
		a.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}

	a.promRegistry = prometheus.NewRegistry()
	a.promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.NewWithRegistry(a.promRegistry)

	clk := clock.Real{}
	ids := idgen.UUID{}
	a.events = events.Factory{IDs: ids, Clock: clk}
	a.Bus = events.NewBus(a.Logger.With().Str("component", "events").Logger())

	if err := a.initModules(clk, ids); err != nil {
		a.Close()
		return nil, fmt.Errorf("init modules: %w", err)
	}

	if a.holder != nil {
		a.watchConfig()
	}

	a.initHTTPServer(opts.Version)
	return a, nil
}

func (a *App) initConfig(opts Options) error {
	if opts.Config != nil {
		a.Config = opts.Config
		return nil
	}
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return err
	}
	a.Config = cfg
	return nil
}

func (a *App) initStore() error {
	switch a.Config.Database.Driver {
	case "memory":
		a.Store = memory.NewOptionStore()
		a.Logger.Warn().Msg("using in-memory option store, settings are lost on exit")
		return nil
	case "sqlite":
		db, err := sqlite.Open(a.Config.Database.DSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Store = sqlite.NewOptionStore(db)
		a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database ready")
		return nil
	}
	return fmt.Errorf("unknown database driver %q", a.Config.Database.Driver)
}

func (a *App) initModules(clk ports.Clock, ids ports.IDGenerator) error {
	ctx := context.Background()
	logger := a.Logger.With().Str("component", "modules").Logger()

	a.Registry = module.NewRegistry(module.Config{
		Checker: dependency.NewChecker(a.Env),
		Mode:    a.Env,
		Env:     a.Env,
		Bus:     a.Bus,
		Events:  a.events,
		Logger:  logger,
	})
	if err := a.Registry.RegisterAll(modules.All()); err != nil {
		return err
	}

	a.Options = app.NewOptionsService(a.Store, a.Registry, logger)
	if err := a.Registry.Init(ctx, a.Options); err != nil {
		// A module that fails to start stays disabled; the rest keep serving.
		a.Logger.Error().Err(err).Msg("some modules failed to initialize")
	}
	a.Metrics.ModulesActive.Set(float64(a.Registry.Count(module.StateActive)))

	a.Settings = app.NewSettingsService(app.SettingsDeps{
		Registry:  a.Registry,
		Options:   a.Options,
		Publisher: a.Bus,
		Clock:     clk,
		IDGen:     ids,
		Metrics:   a.Metrics,
		Logger:    logger,
	})

	a.Logger.Info().
		Int("registered", len(a.Registry.List())).
		Int("active", a.Registry.Count(module.StateActive)).
		Msg("modules initialized")
	return nil
}

// watchConfig applies reloadable configuration to the running app.
func (a *App) watchConfig() {
	a.holder.OnChange(func(cfg *config.Config) {
		a.Env.Update(factsFrom(cfg.Environment))
		facts := a.Env.Snapshot()
		a.Logger.Info().
			Str("mode", facts.Mode).
			Str("host", facts.Host).
			Int("plugins", len(facts.Plugins)).
			Msg("environment updated")
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
		a.Metrics.ConfigReloads.Inc()
		a.Metrics.ConfigLastReload.SetToCurrentTime()
		a.Bus.PublishAsync(context.Background(), a.events.New(events.ConfigReloaded, "", map[string]any{
			"mode": facts.Mode,
		}))
	})
	a.holder.OnError(func(error) {
		a.Metrics.ConfigReloadErrors.Inc()
	})
}

func (a *App) initHTTPServer(version string) {
	cfg := a.Config

	if cfg.Auth.JWTSecret != "" {
		a.Tokens = auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock.Real{})
	}

	modulesHandler := modulehttp.NewHandler(modulehttp.Deps{
		Settings: a.Settings,
		Verifier: a.verifier(),
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	})

	router := apihttp.NewRouter(apihttp.NewHealthHandler(a.healthChecker()), a.Logger, apihttp.RouterConfig{
		Metrics:        a.metricsIfEnabled(),
		MetricsHandler: a.metricsHandler(),
		EnableOpenAPI:  cfg.OpenAPI.Enabled,
		Version:        version,
		ModulesHandler: modulesHandler.Router(),
		Extensions:     a.extensions(),
	})

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// verifier builds the capability check for write endpoints. With no
// credentials configured, writes are open on loopback and closed elsewhere.
func (a *App) verifier() ports.RequestVerifier {
	var verifiers auth.Any
	if h := a.Config.Auth.AdminTokenHash; h != "" {
		verifiers = append(verifiers, auth.NewStaticToken(h, hasher.NewBcrypt(a.Config.Auth.BcryptCost)))
	}
	if a.Tokens != nil {
		verifiers = append(verifiers, a.Tokens)
	}
	if len(verifiers) > 0 {
		return verifiers
	}

	if isLoopback(a.Config.Server.Host) {
		a.Logger.Warn().Msg("no admin credentials configured, allowing unauthenticated writes on loopback")
		return auth.AllowAll{}
	}
	a.Logger.Warn().Msg("no admin credentials configured, settings writes are disabled")
	return verifiers
}

// extensions collects the companion routes of active modules.
func (a *App) extensions() map[string]http.Handler {
	out := make(map[string]http.Handler)
	for _, m := range a.Registry.List() {
		if m.State() != module.StateActive {
			continue
		}
		if r, ok := m.Service().(module.Router); ok {
			out[m.Slug()] = r.Handler()
		}
	}
	return out
}

func (a *App) healthChecker() apihttp.HealthChecker {
	if a.DB != nil {
		return a.DB
	}
	if hc, ok := a.Store.(apihttp.HealthChecker); ok {
		return hc
	}
	return nil
}

func (a *App) metricsIfEnabled() *metrics.Collector {
	if !a.Config.Metrics.Enabled {
		return nil
	}
	return a.Metrics
}

func (a *App) metricsHandler() http.Handler {
	if !a.Config.Metrics.Enabled {
		return nil
	}
	return promhttp.HandlerFor(a.promRegistry, promhttp.HandlerOpts{Registry: a.promRegistry})
}

// Reload re-reads the watched configuration file. It fails when the app
// was created without hot reload.
func (a *App) Reload() error {
	if a.holder == nil {
		return errors.New("hot reload is not enabled")
	}
	return a.holder.Reload()
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.holder != nil {
		if err := a.holder.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch unavailable")
		}
		a.holder.WatchSignals()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Close()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (a *App) Shutdown() error {
	timeout := 10 * time.Second
	if a.Config != nil && a.Config.Server.ShutdownTimeout > 0 {
		timeout = a.Config.Server.ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var err error
	if a.HTTPServer != nil {
		if err = a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}

	a.Logger.Info().Msg("shutdown complete")
	return err
}

// Close stops config watchers and closes the database. It is safe to call
// on a partially initialized app.
func (a *App) Close() error {
	if a.holder != nil {
		a.holder.Stop()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
			return err
		}
		a.DB = nil
	}
	return nil
}

func factsFrom(env config.EnvironmentConfig) environment.Facts {
	return environment.Facts{
		Mode:     env.Mode,
		Host:     env.HostVersion,
		BuilderA: env.BuilderAVersion,
		BuilderB: env.BuilderBVersion,
		Plugins:  env.Plugins,
	}
}

func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
