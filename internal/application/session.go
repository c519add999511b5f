package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/pocketcode/pocket-cli/internal/adapters/api"
	"github.com/pocketcode/pocket-cli/internal/domain"
	"github.com/pocketcode/pocket-cli/internal/ports"
)

// SessionManager owns the single active session id. It is the only writer of
// that id; everything else reads it through Token.
type SessionManager struct {
	api    *api.Client
	store  ports.IdentityStore
	clock  ports.Clock
	logger *zap.Logger

	deviceName string
	platform   string

	mu        sync.RWMutex
	sessionID string
	current   *domain.SessionInfo
}

func NewSessionManager(apiClient *api.Client, store ports.IdentityStore, clock ports.Clock, logger *zap.Logger) *SessionManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	deviceName, err := os.Hostname()
	if err != nil || deviceName == "" {
		deviceName = "pocket-client"
	}

	return &SessionManager{
		api:        apiClient,
		store:      store,
		clock:      clock,
		logger:     logger,
		deviceName: deviceName,
		platform:   runtime.GOOS,
	}
}

var _ api.TokenSource = (*SessionManager)(nil)

func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// Renew replaces the current session with a fresh one. Wired into the
// transport's one-shot 401 retry.
func (m *SessionManager) Renew(ctx context.Context) error {
	_, err := m.Create(ctx)
	return err
}

// Create establishes a new server-side session bound to the device identity
// and persists the returned session id. Creating a session invalidates any
// previously held token reference.
func (m *SessionManager) Create(ctx context.Context) (*domain.SessionInfo, error) {
	identity, err := ensureDeviceIdentity(ctx, m.store)
	if err != nil {
		return nil, err
	}

	session, err := m.api.CreateSession(ctx, identity, m.deviceName, m.platform)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessionID = session.ID
	m.current = session
	m.mu.Unlock()

	if err := m.store.Put(ctx, ports.KeySessionID, session.ID); err != nil {
		// The in-memory session is still usable; it just won't survive a
		// restart.
		m.logger.Warn("persist session id", zap.Error(err))
	}

	return session, nil
}

// Validate checks that the held session still exists and self-heals by
// creating a new one on any failure. A validation failure is never surfaced.
func (m *SessionManager) Validate(ctx context.Context) error {
	if m.Token() == "" {
		m.restorePersisted(ctx)
	}
	if m.Token() == "" {
		_, err := m.Create(ctx)
		return err
	}

	session, err := m.api.FetchSession(ctx)
	if err != nil {
		m.logger.Debug("session validation failed, creating new session", zap.Error(err))
		_, err = m.Create(ctx)
		return err
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	return nil
}

// Current fetches the live session metadata. It returns nil on any failure
// so call sites stay simple.
func (m *SessionManager) Current(ctx context.Context) *domain.SessionInfo {
	if m.Token() == "" {
		return nil
	}

	session, err := m.api.FetchSession(ctx)
	if err != nil {
		m.logger.Debug("fetch session", zap.Error(err))
		return nil
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	return session
}

// Clear drops the local session state. The server-side session is not
// revoked; the next Create simply replaces it.
func (m *SessionManager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.sessionID = ""
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, ports.KeySessionID); err != nil {
		m.logger.Warn("clear persisted session id", zap.Error(err))
	}
}

// ClearIf drops local session state only when the held id still matches,
// leaving any newer session alone.
func (m *SessionManager) ClearIf(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	if m.sessionID != sessionID {
		m.mu.Unlock()
		return
	}
	m.sessionID = ""
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, ports.KeySessionID); err != nil {
		m.logger.Warn("clear persisted session id", zap.Error(err))
	}
}

// restorePersisted loads the session id saved by a previous process, if any.
func (m *SessionManager) restorePersisted(ctx context.Context) {
	sessionID, err := m.store.Get(ctx, ports.KeySessionID)
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			m.logger.Warn("restore session id", zap.Error(err))
		}
		return
	}
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	m.sessionID = sessionID
	m.mu.Unlock()
}

// Describe reports the device identity used for session creation.
func (m *SessionManager) Describe() string {
	return fmt.Sprintf("%s (%s)", m.deviceName, m.platform)
}
