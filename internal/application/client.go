// Package application holds the connection/session core: the state machine,
// the offline queue, the polling loop, and the typed operation wrappers the
// UI layers call.
package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pocketcode/pocket-cli/internal/adapters/api"
	"github.com/pocketcode/pocket-cli/internal/domain"
	"github.com/pocketcode/pocket-cli/internal/ports"
)

const DefaultPollInterval = 5 * time.Second

type Config struct {
	Host          string
	Port          int
	PollInterval  time.Duration
	AutoReconnect bool
}

// Client is the explicitly constructed connection/session core. All state
// lives on the instance; there are no package-level globals.
type Client struct {
	api      *api.Client
	sessions *SessionManager
	poller   *Poller
	clock    ports.Clock
	logger   *zap.Logger

	pollInterval  time.Duration
	autoReconnect bool

	mu        sync.Mutex
	state     domain.ConnectionState
	pending   *connectAttempt
	listeners []func(bool)
	queue     []*queuedCall
	draining  bool
}

// connectAttempt lets concurrent Connect calls join one in-flight attempt.
// result is written before done is closed.
type connectAttempt struct {
	done   chan struct{}
	result bool
}

func NewClient(apiClient *api.Client, sessions *SessionManager, clock ports.Clock, logger *zap.Logger, cfg Config) *Client {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	c := &Client{
		api:           apiClient,
		sessions:      sessions,
		clock:         clock,
		logger:        logger,
		pollInterval:  cfg.PollInterval,
		autoReconnect: cfg.AutoReconnect,
		state: domain.ConnectionState{
			Status: domain.StatusDisconnected,
			Host:   cfg.Host,
			Port:   cfg.Port,
		},
	}
	c.poller = newPoller(c, logger)

	if cfg.Host != "" {
		if err := apiClient.SetTarget(cfg.Host, cfg.Port); err != nil {
			logger.Warn("configure target", zap.Error(err))
		}
	}

	return c
}

// SetTarget points the client at a new host/port without connecting.
func (c *Client) SetTarget(host string, port int) error {
	if err := c.api.SetTarget(host, port); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Host = host
	c.state.Port = port
	c.mu.Unlock()
	return nil
}

// State returns a copy of the current connection state.
func (c *Client) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// QueueDepth reports how many calls are parked on the offline queue.
func (c *Client) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// OnConnectionChange registers a listener for connected/disconnected
// transitions. Listeners are notified synchronously, in registration order.
func (c *Client) OnConnectionChange(fn func(connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Connect establishes the connection and session. It is idempotent: while a
// connect is in flight, concurrent calls join its result instead of issuing
// a second session call; when already connected it reports true immediately.
// Host and port are optional; empty values keep the current target.
func (c *Client) Connect(ctx context.Context, host string, port int) bool {
	c.mu.Lock()
	switch c.state.Status {
	case domain.StatusConnected:
		c.mu.Unlock()
		return true
	case domain.StatusConnecting:
		attempt := c.pending
		c.mu.Unlock()
		return c.joinConnect(ctx, attempt)
	}

	c.state.Status = domain.StatusConnecting
	c.state.Attempts++
	if host != "" {
		c.state.Host = host
	}
	if port > 0 {
		c.state.Port = port
	}
	targetHost, targetPort := c.state.Host, c.state.Port
	attempt := &connectAttempt{done: make(chan struct{})}
	c.pending = attempt
	c.mu.Unlock()

	var connectErr error
	if err := c.api.SetTarget(targetHost, targetPort); err != nil {
		connectErr = err
	} else {
		connectErr = c.sessions.Validate(ctx)
	}

	c.mu.Lock()
	// A Disconnect that landed while the attempt was in flight wins; the late
	// result must not resurrect the connection.
	superseded := c.state.Status != domain.StatusConnecting || c.pending != attempt
	result := !superseded && connectErr == nil
	staleToken := ""
	if superseded && connectErr == nil {
		staleToken = c.sessions.Token()
	}
	var listeners []func(bool)
	drain := false
	if !superseded {
		c.pending = nil
		if result {
			c.state.Status = domain.StatusConnected
			c.state.Attempts = 0
			c.state.LastConnectedAt = c.clock.Now()
			c.state.LastError = ""
			// Claim the drain before releasing the lock so calls racing in
			// right after the transition queue behind the backlog.
			if len(c.queue) > 0 && !c.draining {
				c.draining = true
				drain = true
			}
			listeners = c.snapshotListeners()
		} else {
			c.state.Status = domain.StatusDisconnected
			c.state.LastError = connectErr.Error()
		}
	}
	c.mu.Unlock()

	if superseded {
		// Drop the session this attempt created, unless a newer one already
		// replaced it. Must happen before the attempt resolves so callers
		// never observe the orphaned token.
		c.sessions.ClearIf(context.Background(), staleToken)
	}

	attempt.result = result
	close(attempt.done)

	switch {
	case result:
		c.logger.Info("connected",
			zap.String("host", targetHost),
			zap.Int("port", targetPort),
		)
		c.poller.Start(c.pollInterval)
		if drain {
			go c.drainLoop()
		}
		c.notify(listeners, true)
	case superseded:
		c.logger.Debug("connect attempt superseded by disconnect")
	default:
		c.logger.Warn("connect failed", zap.Error(connectErr))
	}

	return result
}

func (c *Client) joinConnect(ctx context.Context, attempt *connectAttempt) bool {
	if attempt == nil {
		return c.State().Connected()
	}

	select {
	case <-attempt.done:
		return attempt.result
	case <-ctx.Done():
		return false
	}
}

// Disconnect clears all in-memory connection and session state and stops the
// polling loop. The server-side session is left alone.
func (c *Client) Disconnect() {
	c.mu.Lock()
	wasConnected := c.state.Status == domain.StatusConnected
	c.state.Status = domain.StatusDisconnected
	c.state.LastError = ""
	c.pending = nil
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.poller.Stop()
	c.sessions.Clear(context.Background())

	if wasConnected {
		c.logger.Info("disconnected")
		c.notify(listeners, false)
	}
}

// Reconnect drops the current session and connects with a fresh one.
func (c *Client) Reconnect(ctx context.Context) bool {
	c.Disconnect()
	return c.Connect(ctx, "", 0)
}

// HandleNetworkChange reacts to device reachability transitions. With
// auto-reconnect enabled, regained connectivity triggers a connect and lost
// connectivity tears the connection down.
func (c *Client) HandleNetworkChange(ctx context.Context, online bool) {
	if !online {
		c.Disconnect()
		return
	}
	if !c.autoReconnect {
		return
	}
	if !c.State().Connected() {
		c.Connect(ctx, "", 0)
	}
}

// HandleForeground reacts to the application returning to the foreground.
func (c *Client) HandleForeground(ctx context.Context) {
	if !c.autoReconnect {
		return
	}
	if !c.State().Connected() {
		c.Reconnect(ctx)
	}
}

// Session returns the current session metadata, or nil when disconnected or
// on any fetch failure.
func (c *Client) Session(ctx context.Context) *domain.SessionInfo {
	if !c.State().Connected() {
		return nil
	}
	return c.sessions.Current(ctx)
}

func (c *Client) SessionManager() *SessionManager {
	return c.sessions
}

// OnSessionUpdate subscribes to polled session refreshes. The returned func
// unsubscribes.
func (c *Client) OnSessionUpdate(fn func(*domain.SessionInfo)) func() {
	return c.poller.OnSessionUpdate(fn)
}

// OnProjectUpdate subscribes to polled current-project refreshes.
func (c *Client) OnProjectUpdate(fn func(*domain.ProjectDetails)) func() {
	return c.poller.OnProjectUpdate(fn)
}

func (c *Client) snapshotListeners() []func(bool) {
	listeners := make([]func(bool), len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}

func (c *Client) notify(listeners []func(bool), connected bool) {
	for _, fn := range listeners {
		fn(connected)
	}
}
