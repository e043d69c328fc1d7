package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/yndnr/servetls/internal/core/domain"
	"github.com/yndnr/servetls/internal/telemetry/logger"
	"github.com/yndnr/servetls/internal/telemetry/metric"
)

// ErrNotListening is returned by Serve when Listen has not succeeded.
var ErrNotListening = errors.New("httpserver: Serve called before Listen")

// Config configures a Server.
type Config struct {
	// Addr is the host:port to bind.
	Addr string

	// TLSConfig enables TLS termination on the listener. Nil serves plain HTTP.
	TLSConfig *tls.Config

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// MaxConnections caps concurrently accepted connections. 0 means unlimited.
	MaxConnections int

	Logger  logger.Logger
	Metrics *metric.Registry
}

// Server is an HTTP(S) server with an explicit listen step, so bind errors
// surface before serving starts and port 0 can be resolved through Addr.
type Server struct {
	cfg        Config
	httpServer *http.Server
	log        logger.Logger

	mu sync.Mutex
	ln net.Listener
}

// New creates a new server. Nothing is bound until Listen.
func New(cfg Config, handler http.Handler) *Server {
	l := cfg.Logger
	if l == nil {
		l = logger.Discard()
	}

	s := &Server{
		cfg: cfg,
		log: l,
	}
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		ErrorLog:          s.errorLog(),
		ConnState:         s.trackConn,
		// HTTP/1.1 only.
		TLSNextProto: map[string]func(*http.Server, *tls.Conn, http.Handler){},
	}
	return s
}

// Listen binds the configured address. A bind failure returns domain.ErrBind.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return domain.ErrBind.WithDetails(s.cfg.Addr).WithCause(err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}
	if s.cfg.TLSConfig != nil {
		ln = tls.NewListener(ln, s.cfg.TLSConfig)
	}

	s.ln = ln
	return nil
}

// Serve accepts connections until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	if ln == nil {
		return ErrNotListening
	}

	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests until ctx expires. Connections still open at the deadline are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.httpServer.Close()
	}

	// A listener that never reached Serve is not tracked by http.Server.
	s.mu.Lock()
	if s.ln != nil {
		s.ln.Close()
	}
	s.mu.Unlock()
	return err
}

func (s *Server) trackConn(_ net.Conn, state http.ConnState) {
	m := s.cfg.Metrics
	if m == nil {
		return
	}
	switch state {
	case http.StateNew:
		m.ConnectionsTotal.Inc()
		m.ConnectionsActive.Inc()
	case http.StateClosed, http.StateHijacked:
		m.ConnectionsActive.Dec()
	}
}

// errorLog routes net/http's internal errors into the structured logger.
// TLS handshake failures are client-side noise: they go to debug and are counted.
func (s *Server) errorLog() *log.Logger {
	if s.cfg.TLSConfig == nil {
		return logger.StdLogger(s.log, slog.LevelWarn)
	}
	return log.New(&errorLogWriter{server: s}, "", 0)
}

type errorLogWriter struct {
	server *Server
}

func (w *errorLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if strings.Contains(msg, "TLS handshake error") {
		if m := w.server.cfg.Metrics; m != nil {
			m.HandshakeErrors.Inc()
		}
		w.server.log.Debug("tls handshake failed", "detail", msg)
		return len(p), nil
	}
	w.server.log.Warn("http server error", "detail", msg)
	return len(p), nil
}
