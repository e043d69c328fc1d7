package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/servetls/internal/core/domain"
	"github.com/yndnr/servetls/internal/infra/shutdown"
	"github.com/yndnr/servetls/internal/infra/tlscert"
	"github.com/yndnr/servetls/internal/server/config"
	"github.com/yndnr/servetls/internal/server/fileserver"
	"github.com/yndnr/servetls/internal/server/httpserver"
	"github.com/yndnr/servetls/internal/telemetry/logger"
	"github.com/yndnr/servetls/internal/telemetry/metric"
)

// DefaultShutdownTimeout bounds graceful shutdown of both listeners.
const DefaultShutdownTimeout = 10 * time.Second

// App is a configured server. Start binds, Serve blocks, Shutdown stops.
type App struct {
	cfg     *config.ServerConfig
	log     logger.Logger
	out     io.Writer
	metrics *metric.Registry

	keyPair *tlscert.KeyPair
	files   *fileserver.Handler
	server  *httpserver.Server
	admin   *httpserver.Server

	ready atomic.Bool
}

// New creates an App. Banner output goes to out; logs go to log.
func New(cfg *config.ServerConfig, log logger.Logger, out io.Writer) *App {
	if log == nil {
		log = logger.Discard()
	}
	if out == nil {
		out = io.Discard
	}
	return &App{
		cfg:     cfg,
		log:     log,
		out:     out,
		metrics: metric.NewRegistry(),
	}
}

// Start validates the configuration, loads the certificate, opens the
// served root and binds the listeners. Every failure here is fatal:
// configuration problems are domain.ErrConfig-class errors and a busy
// port is domain.ErrBind.
func (a *App) Start() error {
	if err := config.Verify(a.cfg); err != nil {
		return err
	}

	kp, err := tlscert.Load(a.cfg.TLS.CertFile, a.cfg.TLS.KeyFile)
	if err != nil {
		return err
	}
	tlsConfig, err := tlscert.ServerConfig(kp, a.cfg.TLS.MinVersion)
	if err != nil {
		return err
	}
	a.keyPair = kp
	a.metrics.CertificateNotAfter.Set(float64(kp.NotAfter().Unix()))

	if remaining := time.Until(kp.NotAfter()); remaining <= 0 {
		a.log.Warn("certificate has expired", "not_after", kp.NotAfter(), "cert_file", a.cfg.TLS.CertFile)
	} else if remaining < 7*24*time.Hour {
		a.log.Warn("certificate expires soon", "not_after", kp.NotAfter(), "cert_file", a.cfg.TLS.CertFile)
	}

	files, err := fileserver.New(a.cfg.Server.Root, fileserver.Options{
		IndexFiles:        a.cfg.Server.IndexFiles,
		DirectoryListing:  a.cfg.Server.DirectoryListing,
		MaxBytesPerSecond: a.cfg.Server.MaxBytesPerSecond,
		Logger:            a.log.With("component", "fileserver"),
	})
	if err != nil {
		return err
	}
	a.files = files

	srv := a.cfg.Server
	a.server = httpserver.New(httpserver.Config{
		Addr:              srv.Addr(),
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: srv.ReadHeaderTimeout,
		ReadTimeout:       srv.ReadTimeout,
		WriteTimeout:      srv.WriteTimeout,
		IdleTimeout:       srv.IdleTimeout,
		MaxHeaderBytes:    srv.MaxHeaderBytes,
		MaxConnections:    srv.MaxConnections,
		Logger:            a.log.With("component", "https"),
		Metrics:           a.metrics,
	}, httpserver.NewRouter(&httpserver.RouterConfig{
		Files:   files,
		Logger:  a.log.With("component", "access"),
		Metrics: a.metrics,
	}))

	if err := a.server.Listen(); err != nil {
		files.Close()
		return err
	}

	if a.cfg.Admin.Addr != "" {
		a.admin = httpserver.New(httpserver.Config{
			Addr:              a.cfg.Admin.Addr,
			ReadHeaderTimeout: srv.ReadHeaderTimeout,
			ReadTimeout:       srv.ReadTimeout,
			WriteTimeout:      srv.WriteTimeout,
			IdleTimeout:       srv.IdleTimeout,
			MaxHeaderBytes:    srv.MaxHeaderBytes,
			Logger:            a.log.With("component", "admin"),
		}, httpserver.NewAdminRouter(&httpserver.AdminRouterConfig{
			Metrics:   a.metrics,
			Ready:     a.readyCheck,
			Logger:    a.log.With("component", "admin"),
			AllowList: a.cfg.Admin.AllowList,
		}))
		if err := a.admin.Listen(); err != nil {
			a.server.Shutdown(context.Background())
			files.Close()
			return err
		}
	}

	a.log.Info("server started",
		"addr", a.server.Addr().String(),
		"root", a.cfg.Server.Root,
		"cert_file", a.cfg.TLS.CertFile,
		"cert_subject", kp.Leaf().Subject.String(),
		"cert_not_after", kp.NotAfter(),
	)
	if a.admin != nil {
		a.log.Info("admin listener started", "addr", a.admin.Addr().String())
	}

	fmt.Fprintf(a.out, "Serving at https://%s\n", net.JoinHostPort(a.cfg.Server.Host, portOf(a.server.Addr())))
	return nil
}

// Serve blocks until both listeners stop. It returns nil after Shutdown.
func (a *App) Serve() error {
	if a.server == nil {
		return httpserver.ErrNotListening
	}

	var g errgroup.Group
	g.Go(func() error {
		a.ready.Store(true)
		defer a.ready.Store(false)
		return serveOrStop(a.server, a.admin)
	})
	if a.admin != nil {
		g.Go(func() error { return serveOrStop(a.admin, a.server) })
	}
	return g.Wait()
}

// serveOrStop runs srv and shuts peer down if srv fails, so one broken
// listener ends Serve instead of leaving the other running alone.
func serveOrStop(srv, peer *httpserver.Server) error {
	err := srv.Serve()
	if err != nil && peer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		_ = peer.Shutdown(ctx)
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.admin != nil {
		errs = append(errs, a.admin.Shutdown(ctx))
	}
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.files != nil {
		errs = append(errs, a.files.Close())
	}
	a.log.Info("server stopped")
	return errors.Join(errs...)
}

// Addr returns the bound HTTPS address.
func (a *App) Addr() net.Addr {
	if a.server == nil {
		return nil
	}
	return a.server.Addr()
}

// AdminAddr returns the bound admin address, or nil when disabled.
func (a *App) AdminAddr() net.Addr {
	if a.admin == nil {
		return nil
	}
	return a.admin.Addr()
}

// Metrics returns the process metric registry.
func (a *App) Metrics() *metric.Registry {
	return a.metrics
}

// KeyPair returns the loaded certificate, or nil before Start.
func (a *App) KeyPair() *tlscert.KeyPair {
	return a.keyPair
}

func (a *App) readyCheck() error {
	if !a.ready.Load() {
		return domain.ErrNotReady
	}
	return nil
}

// Run starts the server and blocks until ctx is cancelled, SIGINT/SIGTERM
// arrives or a listener fails.
func Run(ctx context.Context, cfg *config.ServerConfig, log logger.Logger, out io.Writer) error {
	a := New(cfg, log, out)
	if err := a.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sh := shutdown.NewHandler(DefaultShutdownTimeout)
	sh.OnShutdown(a.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		err := a.Serve()
		if err != nil {
			a.log.Error("listener failed", "error", err)
		}
		serveErr <- err
		cancel()
	}()

	waitErr := sh.Wait(ctx)
	return errors.Join(<-serveErr, waitErr)
}

func portOf(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return strconv.Itoa(tcp.Port)
	}
	_, port, _ := net.SplitHostPort(addr.String())
	return port
}
