package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pocketcode/pocket-cli/internal/adapters/api"
	"github.com/pocketcode/pocket-cli/internal/ports"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("state key %q: %w", key, ports.ErrKeyNotFound)
	}
	return value, nil
}

func (s *fakeStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// companionServer fakes the desktop companion's /mobile surface with just
// enough behavior for the connection core: session create/fetch, chat echo,
// and current-project polling.
type companionServer struct {
	mux *http.ServeMux

	sessionCreates atomic.Int32
	createDelay    time.Duration
	failFetch      atomic.Bool

	mu       sync.Mutex
	chats    []string
	chatHold chan struct{}
}

func newCompanionServer() *companionServer {
	s := &companionServer{mux: http.NewServeMux()}

	s.mux.HandleFunc("/mobile/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			n := s.sessionCreates.Add(1)
			if s.createDelay > 0 {
				time.Sleep(s.createDelay)
			}
			fmt.Fprintf(w, `{"success":true,"session":{"id":"sess-%d","deviceName":"dev","platform":"linux"}}`, n)
			return
		}
		if s.failFetch.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"success":false,"error":"session lookup failed"}`)
			return
		}
		fmt.Fprintf(w, `{"success":true,"session":{"id":"sess-%d"}}`, s.sessionCreates.Load())
	})

	s.mux.HandleFunc("/mobile/chat", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		hold := s.chatHold
		s.mu.Unlock()
		if hold != nil {
			<-hold
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := decodeJSON(r, &body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.chats = append(s.chats, body.Content)
		s.mu.Unlock()
		fmt.Fprintf(w, `{
			"success": true,
			"userMessage": {"id":"u1","role":"user","content":%q},
			"assistantMessage": {"id":"a1","role":"assistant","content":"ack"}
		}`, body.Content)
	})

	s.mux.HandleFunc("/mobile/projects/current", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":true,"project":{"id":"p1","name":"pocket-cli"}}`)
	})

	s.mux.HandleFunc("/mobile/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":true,"version":"test"}`)
	})

	return s
}

func (s *companionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// holdChat blocks chat handling until releaseChat is called.
func (s *companionServer) holdChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatHold = make(chan struct{})
}

func (s *companionServer) releaseChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.chatHold)
}

func (s *companionServer) chatLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.chats...)
}

func decodeJSON(r *http.Request, out any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(out)
}

// newTestCore wires a full client against the fake companion, with a fast
// poll interval so tests stay quick.
func newTestCore(t *testing.T, handler http.Handler, cfg Config) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	host, port := splitTarget(t, server.URL)
	apiClient := api.NewClient(time.Second)
	sessions := NewSessionManager(apiClient, newFakeStore(), nil, nil)
	apiClient.SetTokenSource(sessions)

	cfg.Host = host
	cfg.Port = port
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 20 * time.Millisecond
	}

	client := NewClient(apiClient, sessions, nil, nil, cfg)
	t.Cleanup(client.Disconnect)
	return client
}

func splitTarget(t *testing.T, rawURL string) (string, int) {
	t.Helper()

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return parsed.Hostname(), port
}
