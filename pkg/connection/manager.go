package connection

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lernwerk/resilient-cache/pkg/logging"
)

// Probe checks whether the remote backend is reachable. The production
// probe is a Redis PING; tests inject scripted probes.
type Probe func(ctx context.Context) error

// Config holds the connection manager configuration.
type Config struct {
	// Addr is the remote cache address (host:port).
	Addr string

	// Password and DB are passed through to the Redis client.
	Password string
	DB       int

	// MaxAttempts is the connect attempt budget per reconnect cycle.
	// Exhausting it transitions the manager to StatePermanentlyDegraded.
	MaxAttempts int

	// BaseDelay and MaxDelay shape the backoff: attempt n waits
	// min(n*BaseDelay, MaxDelay) before the next attempt.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// ProbeTimeout bounds a single probe call.
	ProbeTimeout time.Duration

	// PingInterval is how often the connection is probed while connected.
	PingInterval time.Duration

	// MaxCycles caps connect cycles per process lifetime. The per-cycle
	// attempt counter resets on every fresh disconnect; this cap keeps a
	// flapping remote from retrying forever. Zero means no cap.
	MaxCycles int
}

// DefaultConfig returns a safe default configuration for addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:         addr,
		MaxAttempts:  10,
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     3 * time.Second,
		ProbeTimeout: 2 * time.Second,
		PingInterval: 2 * time.Second,
		MaxCycles:    50,
	}
}

// Manager drives the connection state machine:
//
//	Disconnected -> Connecting -> Connected -> (disconnect) -> Disconnected
//
// Exhausting the attempt budget of a cycle, or the cycle budget of the
// process, ends in StatePermanentlyDegraded and no further retries.
type Manager struct {
	cfg    Config
	probe  Probe
	client *redis.Client
	logger zerolog.Logger

	mu        sync.Mutex
	state     State
	callbacks []func(old, new State)

	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates a manager that probes a Redis backend at cfg.Addr.
func New(cfg Config) *Manager {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	m := newManager(cfg, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	m.client = client
	return m
}

// NewWithProbe creates a manager around an injected probe. Used by tests
// and by backends that are not plain Redis.
func NewWithProbe(cfg Config, probe Probe) *Manager {
	return newManager(cfg, probe)
}

func newManager(cfg Config, probe Probe) *Manager {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 2 * time.Second
	}
	return &Manager{
		cfg:    cfg,
		probe:  probe,
		logger: logging.NewLogger("connection"),
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}
}

// Client returns the underlying Redis client, or nil when the manager was
// built around an injected probe.
func (m *Manager) Client() *redis.Client {
	return m.client
}

// Start launches the connect/monitor loop. It returns immediately; the
// readiness flag flips asynchronously. Calling Start twice is a no-op.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	go m.run(ctx)
}

// Stop cancels any pending retry timer, terminates the loop and closes the
// Redis client. Safe to call more than once.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	started := m.started
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-m.done
	}
	if m.client != nil {
		_ = m.client.Close()
	}
}

// IsReady reports whether the remote backend is currently usable.
func (m *Manager) IsReady() bool {
	return m.State() == StateConnected
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnStateChange registers a callback invoked on every state transition.
// Callbacks are for observability only and run outside the manager's lock.
func (m *Manager) OnStateChange(fn func(old, new State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	for cycle := 1; ; cycle++ {
		if m.cfg.MaxCycles > 0 && cycle > m.cfg.MaxCycles {
			m.degrade("reconnect cycle budget exhausted", cycle-1)
			return
		}
		if !m.connect(ctx) {
			return
		}
		if !m.watch(ctx) {
			return
		}
	}
}

// connect runs one cycle of bounded connect attempts. It returns true once
// connected and false when the context is done or the budget is exhausted.
func (m *Manager) connect(ctx context.Context) bool {
	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return false
		}

		m.setState(StateConnecting)
		connectAttemptsTotal.Inc()

		err := m.runProbe(ctx)
		if err == nil {
			m.setState(StateConnected)
			m.logger.Info().
				Str("addr", m.cfg.Addr).
				Int("attempt", attempt).
				Msg("Connected to remote cache")
			return true
		}

		connectFailuresTotal.Inc()
		m.setState(StateDisconnected)

		if attempt == m.cfg.MaxAttempts {
			break
		}

		wait := backoffDelay(attempt, m.cfg.BaseDelay, m.cfg.MaxDelay)
		backoffSeconds.Observe(wait.Seconds())

		m.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Connect attempt failed, retrying after backoff")

		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}

	m.degrade("connect attempt budget exhausted", m.cfg.MaxAttempts)
	return false
}

// watch probes the live connection until it drops. It returns true when a
// disconnect was detected (a fresh cycle should start) and false when the
// context is done.
func (m *Manager) watch(ctx context.Context) bool {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if err := m.runProbe(ctx); err != nil {
				disconnectsTotal.Inc()
				m.logger.Warn().
					Err(err).
					Str("addr", m.cfg.Addr).
					Msg("Lost connection to remote cache")
				m.setState(StateDisconnected)
				return true
			}
		}
	}
}

func (m *Manager) runProbe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()
	return m.probe(ctx)
}

// degrade is terminal: logged once, never retried. The facade keeps
// operating on the local store.
func (m *Manager) degrade(reason string, attempts int) {
	retryExhaustedTotal.Inc()
	m.setState(StatePermanentlyDegraded)
	m.logger.Error().
		Str("addr", m.cfg.Addr).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("Remote cache permanently degraded, serving from local store only")
}

func (m *Manager) setState(next State) {
	m.mu.Lock()
	old := m.state
	if old == next {
		m.mu.Unlock()
		return
	}
	m.state = next
	cbs := make([]func(old, new State), len(m.callbacks))
	copy(cbs, m.callbacks)
	m.mu.Unlock()

	connState.Set(stateValue[next])
	m.logger.Debug().
		Str("from", string(old)).
		Str("to", string(next)).
		Msg("Connection state changed")

	for _, cb := range cbs {
		cb(old, next)
	}
}
