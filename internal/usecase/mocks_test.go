package usecase_test

import (
	"context"
	"sync"

	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/auth"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) GetLatestByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) HasStatus(ctx context.Context, userID string, statuses []domain.SubscriptionStatus) (bool, error) {
	args := m.Called(ctx, userID, statuses)
	return args.Bool(0), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) CountCompletedProfiles(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockProfileRepo) ListByUserID(ctx context.Context, userID string) ([]domain.BusinessProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BusinessProfile), args.Error(1)
}

type MockEntitlementService struct {
	mock.Mock
}

func (m *MockEntitlementService) CheckAccess(ctx context.Context, userID string) (*domain.AccessResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessResult), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dst interface{}) error {
	return m.Called(ctx, key, dst).Error(0)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

// fakeIdentity is an identity provider whose session probe and change
// events are driven by the test.
type fakeIdentity struct {
	mu       sync.Mutex
	session  func(ctx context.Context) (*domain.Identity, error)
	listener func(domain.SessionEvent)
}

func (f *fakeIdentity) GetCurrentSession(ctx context.Context) (*domain.Identity, error) {
	return f.session(ctx)
}

func (f *fakeIdentity) OnSessionChange(cb func(domain.SessionEvent)) func() {
	f.mu.Lock()
	f.listener = cb
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.listener = nil
		f.mu.Unlock()
	}
}

func (f *fakeIdentity) emit(ev domain.SessionEvent) {
	f.mu.Lock()
	cb := f.listener
	f.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

func (f *fakeIdentity) subscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener != nil
}

func staticSession(identity *domain.Identity, err error) func(context.Context) (*domain.Identity, error) {
	return func(context.Context) (*domain.Identity, error) { return identity, err }
}

// historyNavigator records every navigation and can be told to fail.
type historyNavigator struct {
	mu      sync.Mutex
	history []string
	err     error
}

func (n *historyNavigator) Navigate(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.history = append(n.history, path)
	return nil
}

func (n *historyNavigator) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.history...)
}

func (n *historyNavigator) setErr(err error) {
	n.mu.Lock()
	n.err = err
	n.mu.Unlock()
}

func strPtr(s string) *string { return &s }
