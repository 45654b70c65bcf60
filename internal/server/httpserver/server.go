package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
	"github.com/yndnr/provisiond-go/internal/telemetry/metric"
)

var (
	// ErrNoCertificate is returned by New when the TLS config cannot supply
	// a certificate.
	ErrNoCertificate = errors.New("httpserver: TLS config has no certificate")

	// ErrNotListening is returned by Serve before Listen succeeded.
	ErrNotListening = errors.New("httpserver: not listening")
)

// Options configures a Server.
type Options struct {
	// Addr is the TCP address to bind, e.g. ":8080".
	Addr string

	// TLSConfig must provide Certificates or GetCertificate.
	TLSConfig *tls.Config

	// ReadHeaderTimeout also bounds the TLS handshake.
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// MaxConns caps concurrent connections; 0 means unlimited.
	MaxConns int

	Logger  logger.Logger
	Metrics *metric.Registry
}

// Server is a TLS-terminating HTTP server.
type Server struct {
	opts       Options
	httpServer *http.Server
	logger     logger.Logger

	mu sync.Mutex
	ln net.Listener
}

// New creates a server for handler. The TLS context is validated here so
// that no socket is bound without usable key material.
func New(opts Options, handler http.Handler) (*Server, error) {
	if opts.TLSConfig == nil {
		return nil, ErrNoCertificate
	}
	if len(opts.TLSConfig.Certificates) == 0 && opts.TLSConfig.GetCertificate == nil {
		return nil, ErrNoCertificate
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger,
	}

	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          log.New(&errorLogWriter{logger: opts.Logger, metrics: opts.Metrics}, "", 0),
		// HTTP/1.1 only; the TLS config does not offer h2.
		TLSNextProto: make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
		BaseContext: func(net.Listener) context.Context {
			return logger.WithLogger(context.Background(), opts.Logger)
		},
	}

	return s, nil
}

// Listen binds the TCP socket and wraps it with the connection cap and TLS.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return errors.New("httpserver: already listening")
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("httpserver: listen %s: %w", s.opts.Addr, err)
	}
	if s.opts.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConns)
	}
	s.ln = tls.NewListener(ln, s.opts.TLSConfig)

	return nil
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

// Serve accepts connections until Shutdown. It returns nil after a
// graceful shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	if ln == nil {
		return ErrNotListening
	}

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpserver: serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// errorLogWriter receives net/http's internal error log.
type errorLogWriter struct {
	logger  logger.Logger
	metrics *metric.Registry
}

func (w *errorLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))

	if strings.Contains(msg, "TLS handshake error") {
		if w.metrics != nil {
			w.metrics.TLSHandshakeErrors.Inc()
		}
		w.logger.Warn("tls handshake failed", "detail", msg)
		return len(p), nil
	}

	w.logger.Warn("http server error", "detail", msg)
	return len(p), nil
}
