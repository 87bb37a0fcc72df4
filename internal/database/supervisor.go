package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/config"
	"github.com/smartcampus/portal/backend/pkg/logger"
	"github.com/smartcampus/portal/backend/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 30 * time.Second
)

// DialFunc performs one connection attempt against uri.
type DialFunc func(ctx context.Context, uri string) (*mongo.Client, error)

// Supervisor obtains a live database client before the service accepts
// traffic. It walks the planned strategies with bounded retries and, when all
// of them fail, waits RetryInterval and starts over. Only ctx cancellation
// stops it.
type Supervisor struct {
	cfg       config.MongoDBConfig
	dial      DialFunc
	sleep     func(ctx context.Context, d time.Duration) error
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewSupervisor returns a supervisor dialing with ConnectMongo.
func NewSupervisor(cfg config.MongoDBConfig) *Supervisor {
	opts := ConnectOptions{Timeout: cfg.Timeout, TLSAllowInvalidCerts: cfg.TLSAllowInvalidCerts}
	return &Supervisor{
		cfg: cfg,
		dial: func(ctx context.Context, uri string) (*mongo.Client, error) {
			return ConnectMongo(ctx, uri, opts)
		},
		sleep:     sleepCtx,
		baseDelay: defaultBaseDelay,
		maxDelay:  defaultMaxDelay,
	}
}

// WithDialer replaces the dial function (tests, alternate drivers).
func (s *Supervisor) WithDialer(d DialFunc) *Supervisor {
	s.dial = d
	return s
}

// WithSleep replaces the wait function used between attempts and cycles.
func (s *Supervisor) WithSleep(f func(ctx context.Context, d time.Duration) error) *Supervisor {
	s.sleep = f
	return s
}

// Backoff returns the wait after the given failed attempt (1-based).
func (s *Supervisor) Backoff(attempt int) time.Duration {
	d := s.baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= s.maxDelay {
			return s.maxDelay
		}
	}
	return d
}

func (s *Supervisor) retryInterval() time.Duration {
	if s.cfg.RetryInterval <= 0 {
		return time.Minute
	}
	return s.cfg.RetryInterval
}

// Run blocks until a strategy connects or ctx is done.
func (s *Supervisor) Run(ctx context.Context) (*mongo.Client, Strategy, error) {
	if s.cfg.TLSAllowInvalidCerts {
		logger.Warnf("TLS certificate validation is disabled for the MongoDB connection (debug mode)")
	}
	for cycle := 1; ; cycle++ {
		plan := Plan(s.cfg)
		for _, st := range plan {
			logger.Infof("connecting to MongoDB (%s): %s", st.Name, MaskURI(st.URI))
			client, err := s.attempt(ctx, st)
			if err == nil {
				logger.Infof("connected to MongoDB using %s", st.Name)
				return client, st, nil
			}
			if ctx.Err() != nil {
				return nil, Strategy{}, ctx.Err()
			}
			logger.Errorf("MongoDB strategy %s failed: %v", st.Name, err)
			guidance(err)
		}

		wait := s.retryInterval()
		logger.Warnf("all MongoDB connection attempts failed (cycle %d); retrying in %s", cycle, wait)
		if err := s.sleep(ctx, wait); err != nil {
			return nil, Strategy{}, err
		}
	}
}

func (s *Supervisor) attempt(ctx context.Context, st Strategy) (*mongo.Client, error) {
	attempts := st.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for n := 1; n <= attempts; n++ {
		if n > 1 {
			logger.Infof("MongoDB connect retry attempt %d/%d (%s)", n, attempts, st.Name)
		}
		client, err := s.dial(ctx, st.URI)
		if err == nil {
			metrics.DBConnectAttempts.WithLabelValues(st.Name, "success").Inc()
			return client, nil
		}
		metrics.DBConnectAttempts.WithLabelValues(st.Name, "failure").Inc()
		lastErr = err
		logger.Warnf("MongoDB connect attempt %d/%d failed: %s", n, attempts, MaskURI(err.Error()))
		if n == attempts {
			break
		}
		delay := s.Backoff(n)
		logger.Infof("waiting %s before retrying", delay)
		if err := s.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s after %d attempts: %w: %v", st.Name, attempts, apperrors.ErrPersistenceUnavailable, lastErr)
}

// guidance logs operator hints for the most common failure causes.
func guidance(err error) {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "authentication failed") || strings.Contains(msg, "not authorized") {
		logger.Errorf("MongoDB authentication failed: check the username/password; special characters in the password must be URL-encoded")
	}
	if strings.Contains(msg, "server selection") || strings.Contains(msg, "replicasetnoprimary") || strings.Contains(msg, "no such host") {
		logger.Errorf("could not reach the MongoDB cluster: check the network access list for this host's IP, whether the cluster is paused, and any proxy/VPN blocking outbound traffic")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
