package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

// Poller substitutes for server push: a fixed-interval timer that re-fetches
// session and current-project state and fans results out to subscribers.
// Tick failures are logged and swallowed; they never stop the timer and
// never touch connection state.
type Poller struct {
	client *Client
	logger *zap.Logger

	mu          sync.Mutex
	stop        chan struct{}
	nextID      int
	sessionSubs map[int]func(*domain.SessionInfo)
	projectSubs map[int]func(*domain.ProjectDetails)
}

func newPoller(client *Client, logger *zap.Logger) *Poller {
	return &Poller{
		client:      client,
		logger:      logger,
		sessionSubs: map[int]func(*domain.SessionInfo){},
		projectSubs: map[int]func(*domain.ProjectDetails){},
	}
}

// Start arms the recurring timer. Restarting while running replaces the
// interval.
func (p *Poller) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	p.mu.Lock()
	if p.stop != nil {
		close(p.stop)
	}
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	go p.run(interval, stop)
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

func (p *Poller) OnSessionUpdate(fn func(*domain.SessionInfo)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.sessionSubs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.sessionSubs, id)
	}
}

func (p *Poller) OnProjectUpdate(fn func(*domain.ProjectDetails)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.projectSubs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.projectSubs, id)
	}
}

func (p *Poller) run(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.tick(interval)
		}
	}
}

func (p *Poller) tick(interval time.Duration) {
	if !p.client.State().Connected() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interval)
	defer cancel()

	if session := p.client.sessions.Current(ctx); session != nil {
		// A response that lands after Disconnect is dropped.
		if p.client.State().Connected() {
			p.publishSession(session)
		}
	}

	project, err := p.client.api.CurrentProject(ctx)
	if err != nil {
		p.logger.Debug("poll current project", zap.Error(err))
		return
	}
	if p.client.State().Connected() {
		p.publishProject(project)
	}
}

func (p *Poller) publishSession(session *domain.SessionInfo) {
	p.mu.Lock()
	subs := make([]func(*domain.SessionInfo), 0, len(p.sessionSubs))
	for _, fn := range p.sessionSubs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

func (p *Poller) publishProject(project *domain.ProjectDetails) {
	p.mu.Lock()
	subs := make([]func(*domain.ProjectDetails), 0, len(p.projectSubs))
	for _, fn := range p.projectSubs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(project)
	}
}
