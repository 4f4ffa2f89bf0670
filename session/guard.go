package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/realtime"
)

type Status string

const (
	Checking        Status = "checking"
	Authenticated   Status = "authenticated"
	Unauthenticated Status = "unauthenticated"
)

// Resolver turns an access token into the principal of a live session.
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (*models.Principal, error)
}

// EventSource streams session events.
type EventSource interface {
	SubscribeSessions(ctx context.Context) (*realtime.AuthSubscription, error)
}

// State is the guard's view of the caller.
type State struct {
	Status    Status            `json:"status"`
	Principal *models.Principal `json:"user,omitempty"`
}

// Guard tracks whether a token still belongs to a live session. It starts in
// Checking and moves between Authenticated and Unauthenticated as session
// events arrive. There is no terminal state.
type Guard struct {
	resolver Resolver
	events   EventSource
	log      *logger.Logger

	mu      sync.RWMutex
	state   State
	changes chan State
}

func NewGuard(resolver Resolver, events EventSource, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.Discard()
	}
	return &Guard{
		resolver: resolver,
		events:   events,
		log:      log.Component("session"),
		state:    State{Status: Checking},
		changes:  make(chan State, 1),
	}
}

// Run subscribes to session events, resolves token and keeps re-resolving
// it on every event until ctx ends. The subscription is released on return.
func (g *Guard) Run(ctx context.Context, token string) error {
	defer close(g.changes)

	sub, err := g.events.SubscribeSessions(ctx)
	if err != nil {
		g.set(State{Status: Unauthenticated})
		return fmt.Errorf("failed to watch session events: %w", err)
	}
	defer sub.Close()

	g.evaluate(ctx, token)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			g.log.WithField("event", string(ev.Type)).Debug("re-evaluating session")
			g.evaluate(ctx, token)
		}
	}
}

func (g *Guard) evaluate(ctx context.Context, token string) {
	if token == "" {
		g.set(State{Status: Unauthenticated})
		return
	}
	principal, err := g.resolver.Resolve(ctx, token)
	if err != nil || principal == nil {
		if ctx.Err() != nil {
			return
		}
		g.set(State{Status: Unauthenticated})
		return
	}
	g.set(State{Status: Authenticated, Principal: principal})
}

func (g *Guard) set(st State) {
	g.mu.Lock()
	g.state = st
	g.mu.Unlock()

	select {
	case g.changes <- st:
		return
	default:
	}
	select {
	case <-g.changes:
	default:
	}
	g.changes <- st
}

// State returns the current evaluation.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Changes yields each new evaluation. It is closed when Run returns.
func (g *Guard) Changes() <-chan State {
	return g.changes
}
