package usecase

import (
	"context"
	"errors"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/auth"
	"sync"
)

// TokenVerifier turns an access token into verified claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// SessionBroker fans session change events out to subscribers.
type SessionBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(domain.SessionEvent)
}

func NewSessionBroker() *SessionBroker {
	return &SessionBroker{subs: make(map[int]func(domain.SessionEvent))}
}

// Subscribe registers cb and returns its unsubscribe function. Calling the
// returned function more than once is harmless.
func (b *SessionBroker) Subscribe(cb func(domain.SessionEvent)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = cb
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers ev to every current subscriber outside the lock.
func (b *SessionBroker) Publish(ev domain.SessionEvent) {
	b.mu.Lock()
	subs := make([]func(domain.SessionEvent), 0, len(b.subs))
	for _, cb := range b.subs {
		subs = append(subs, cb)
	}
	b.mu.Unlock()

	for _, cb := range subs {
		cb(ev)
	}
}

// TokenIdentityProvider resolves the session from a bearer token. An empty
// token means "no session"; an invalid one is a probe failure.
type TokenIdentityProvider struct {
	mu       sync.RWMutex
	token    string
	verifier TokenVerifier
	broker   *SessionBroker
}

func NewTokenIdentityProvider(token string, verifier TokenVerifier, broker *SessionBroker) *TokenIdentityProvider {
	if broker == nil {
		broker = NewSessionBroker()
	}
	return &TokenIdentityProvider{token: token, verifier: verifier, broker: broker}
}

func (p *TokenIdentityProvider) GetCurrentSession(ctx context.Context) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token == "" {
		return nil, nil
	}
	return p.identityFor(token)
}

func (p *TokenIdentityProvider) OnSessionChange(cb func(domain.SessionEvent)) func() {
	return p.broker.Subscribe(cb)
}

// SignIn verifies token, makes it the current session and notifies subscribers.
func (p *TokenIdentityProvider) SignIn(token string) (*domain.Identity, error) {
	identity, err := p.identityFor(token)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	p.broker.Publish(domain.SessionEvent{Type: domain.SessionSignedIn, Identity: identity})
	return identity, nil
}

// SignOut drops the current session and notifies subscribers.
func (p *TokenIdentityProvider) SignOut() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()

	p.broker.Publish(domain.SessionEvent{Type: domain.SessionSignedOut})
}

var ErrNoVerifier = errors.New("identity provider has no token verifier")

func (p *TokenIdentityProvider) identityFor(token string) (*domain.Identity, error) {
	if p.verifier == nil {
		return nil, ErrNoVerifier
	}
	claims, err := p.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{ID: claims.Subject, Email: claims.Email, ExpiresAt: claims.ExpiresAt}, nil
}
