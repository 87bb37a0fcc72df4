package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/smartcampus/portal/backend/internal/config"
	"github.com/smartcampus/portal/backend/pkg/logger"
)

// Listener binds the HTTP socket at most once per process.
type Listener struct {
	addr   string
	cfg    config.ServerConfig
	listen func(network, address string) (net.Listener, error)

	once sync.Once
	mu   sync.Mutex
	srv  *http.Server
	ln   net.Listener
	err  error
}

func NewListener(cfg config.ServerConfig) *Listener {
	return &Listener{
		addr:   net.JoinHostPort(cfg.Host, cfg.Port),
		cfg:    cfg,
		listen: net.Listen,
	}
}

// WithListen replaces the socket factory (tests).
func (l *Listener) WithListen(f func(network, address string) (net.Listener, error)) *Listener {
	l.listen = f
	return l
}

// Start binds and serves h in the background. Only the first call binds;
// later calls return the first call's result.
func (l *Listener) Start(h http.Handler) error {
	l.once.Do(func() {
		ln, err := l.listen("tcp", l.addr)
		if err != nil {
			l.setErr(err)
			return
		}
		srv := &http.Server{
			Handler:      h,
			ReadTimeout:  l.cfg.ReadTimeout,
			WriteTimeout: l.cfg.WriteTimeout,
		}
		l.mu.Lock()
		l.srv, l.ln = srv, ln
		l.mu.Unlock()

		logger.Infof("listening on %s", ln.Addr())
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("server stopped: %v", err)
			}
		}()
	})
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *Listener) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// Addr is the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (l *Listener) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	srv := l.srv
	l.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
