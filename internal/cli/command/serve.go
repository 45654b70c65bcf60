package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/provisiond-go/internal/infra/buildinfo"
	"github.com/yndnr/provisiond-go/internal/infra/confloader"
	"github.com/yndnr/provisiond-go/internal/infra/shutdown"
	"github.com/yndnr/provisiond-go/internal/infra/tlscert"
	"github.com/yndnr/provisiond-go/internal/server/config"
	"github.com/yndnr/provisiond-go/internal/server/httpserver"
	"github.com/yndnr/provisiond-go/internal/server/httpserver/handler"
	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
	"github.com/yndnr/provisiond-go/internal/telemetry/metric"
)

// component is what a service mounts on the shared transport.
type component struct {
	Handler http.Handler
	Ready   handler.ReadinessCheck
	Close   func() error
}

type buildFunc func(cfg *config.Config, log logger.Logger, m *metric.Registry) (*component, error)

func run(c *cli.Context, def serviceDef) error {
	opts := loaderOptions(c, def)

	cfg, err := loadConfig(def.service, opts)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	var reload func() (*config.Config, error)
	if path := c.String("config"); path != "" {
		reload = func() (*config.Config, error) {
			return loadConfig(def.service, opts)
		}
		log = log.With("config", path)
	}

	return serve(c.Context, def, cfg, log, reload, c.String("config"))
}

// serve runs the service until ctx is cancelled or a shutdown signal
// arrives. Startup failures are returned before anything is served.
func serve(ctx context.Context, def serviceDef, cfg *config.Config, log logger.Logger,
	reload func() (*config.Config, error), configFile string) error {

	info := buildinfo.Get(string(def.service))
	log.Info("starting "+def.title, append(info.LogAttrs(), "port", cfg.Server.Port)...)

	m := metric.NewRegistry(string(def.service))
	sh := shutdown.NewHandler(cfg.Server.ShutdownTimeout)

	certs, err := tlscert.NewWatcher(cfg.Server.Cert, cfg.Server.Key,
		tlscert.WithLogger(log.Slog()),
		tlscert.WithReloadHook(func(err error) {
			m.ObserveCertReload(err)
			if err != nil {
				log.Error("certificate reload failed; keeping previous certificate", "error", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	comp, err := def.build(cfg, log, m)
	if err != nil {
		return err
	}

	// Past this point hooks may hold resources; release them on failure.
	abort := func(err error) error {
		if herr := sh.Run(); herr != nil {
			log.Warn("cleanup after failed startup", "error", herr)
		}
		return err
	}
	if comp.Close != nil {
		sh.OnShutdown(func(context.Context) error {
			log.Info("closing " + def.title + " resources")
			return comp.Close()
		})
	}

	if cfg.Server.WatchCert {
		certs.StartAsync()
		sh.OnShutdown(func(context.Context) error {
			certs.Stop()
			return nil
		})
	}

	if reload != nil && configFile != "" {
		cw, err := watchConfig(configFile, reload, log)
		if err != nil {
			log.Warn("config file watch disabled", "error", err)
		} else {
			sh.OnShutdown(func(context.Context) error {
				return cw.Stop()
			})
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)

	if cfg.Metrics.Addr != "" {
		ops, err := startOps(cfg, comp.Ready, m, log, errCh, cancel)
		if err != nil {
			return abort(err)
		}
		sh.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return ops.Shutdown(ctx)
		})
	}

	srv, err := httpserver.New(httpserver.Options{
		Addr:              cfg.Server.Addr(),
		TLSConfig:         certs.ServerConfig(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxConns:          cfg.Server.MaxConns,
		Logger:            log,
		Metrics:           m,
	}, httpserver.NewStack(comp.Handler, httpserver.StackConfig{
		Logger:    log,
		Metrics:   m,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	}))
	if err != nil {
		return abort(err)
	}
	if err := srv.Listen(); err != nil {
		return abort(err)
	}

	sh.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTPS server")
		return srv.Shutdown(ctx)
	})

	go func() {
		if err := srv.Serve(); err != nil {
			errCh <- err
			cancel()
		}
	}()

	log.Info(def.title+" listening", "addr", srv.Addr().String())

	err = sh.Wait(ctx)
	select {
	case serveErr := <-errCh:
		err = errors.Join(serveErr, err)
	default:
	}
	if err != nil {
		return err
	}

	log.Info(def.title + " stopped")
	return nil
}

// startOps serves metrics and health checks over plain HTTP.
func startOps(cfg *config.Config, ready handler.ReadinessCheck, m *metric.Registry,
	log logger.Logger, errCh chan<- error, cancel context.CancelFunc) (*http.Server, error) {

	ln, err := net.Listen("tcp", cfg.Metrics.Addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listen %s: %w", cfg.Metrics.Addr, err)
	}

	ops := &http.Server{
		Handler:           handler.NewOps(m.Handler(), ready),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ErrorLog:          logger.StdLogger(log, slog.LevelWarn),
	}

	go func() {
		if err := ops.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics: serve: %w", err)
			cancel()
		}
	}()

	log.Info("metrics server listening", "addr", ln.Addr().String())
	return ops, nil
}

// watchConfig applies log level changes from the config file at runtime.
// Other settings take effect on restart.
func watchConfig(path string, reload func() (*config.Config, error), log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		next, err := reload()
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if applyLogLevel(next.Log.Level, log) {
			return
		}
		log.Info("config file changed; restart to apply settings other than log.level")
	})
	w.StartAsync()

	return w, nil
}

// applyLogLevel sets the global level and reports whether it changed.
// Spellings of the current level ("INFO", "warning") are not a change.
func applyLogLevel(level string, log logger.Logger) bool {
	want := logger.NormalizeLevel(level)
	if want == logger.GetLevel() {
		return false
	}
	logger.SetLevel(want)
	log.Info("log level changed", "level", want)
	return true
}
