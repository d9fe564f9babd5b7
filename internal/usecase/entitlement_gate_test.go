package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jetsuite-backend/internal/domain"
	"jetsuite-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type gateState struct {
	state domain.GateState
	left  int
}

type stateLog struct {
	mu     sync.Mutex
	states []gateState
}

func (l *stateLog) record(state domain.GateState, left int) {
	l.mu.Lock()
	l.states = append(l.states, gateState{state, left})
	l.mu.Unlock()
}

func (l *stateLog) all() []gateState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]gateState{}, l.states...)
}

func TestEntitlementGateCheck(t *testing.T) {
	t.Run("Should allow an active subscription", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{HasAccess: true, Status: domain.StatusActive}, nil)
		gate := usecase.NewEntitlementGate(svc, nil, 3*time.Second, nil, nil)

		res := gate.Check(context.Background(), "user-1")
		assert.Equal(t, domain.GateAllowed, res.State)
		assert.Equal(t, domain.StatusActive, res.Status)
	})

	t.Run("Should deny to the locked page with the countdown", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{Status: domain.StatusUnpaid, RedirectTo: "/account"}, nil)
		gate := usecase.NewEntitlementGate(svc, nil, 3*time.Second, nil, nil)

		res := gate.Check(context.Background(), "user-1")
		assert.Equal(t, domain.GateDenied, res.State)
		assert.Equal(t, domain.StatusUnpaid, res.Status)
		assert.Equal(t, domain.PathBillingLocked, res.RedirectTo)
		assert.Equal(t, 3, res.Countdown)
	})

	t.Run("Should round partial countdown seconds up", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{Status: domain.StatusCanceled}, nil)

		cases := map[time.Duration]int{
			0:                       0,
			500 * time.Millisecond:  1,
			time.Second:             1,
			1500 * time.Millisecond: 2,
		}
		for countdown, want := range cases {
			res := usecase.NewEntitlementGate(svc, nil, countdown, nil, nil).Check(context.Background(), "user-1")
			assert.Equal(t, want, res.Countdown, countdown.String())
		}
	})

	t.Run("Should deny when the check fails", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(nil, errors.New("db down"))
		gate := usecase.NewEntitlementGate(svc, nil, 0, nil, nil)

		res := gate.Check(context.Background(), "user-1")
		assert.Equal(t, domain.GateDenied, res.State)
		assert.Equal(t, domain.StatusNone, res.Status)
	})

	t.Run("Should deny without a user", func(t *testing.T) {
		svc := new(MockEntitlementService)
		gate := usecase.NewEntitlementGate(svc, nil, 0, nil, nil)

		res := gate.Check(context.Background(), "")
		assert.Equal(t, domain.GateDenied, res.State)
		svc.AssertNotCalled(t, "CheckAccess", mock.Anything, mock.Anything)
	})
}

func TestEntitlementGateGuard(t *testing.T) {
	t.Run("Should go from pending to allowed", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{HasAccess: true, Status: domain.StatusTrialing}, nil)
		nav := &historyNavigator{}
		gate := usecase.NewEntitlementGate(svc, nav, time.Second, nil, nil)
		log := &stateLog{}

		res := gate.Guard(context.Background(), "user-1", usecase.GateHooks{OnState: log.record})
		assert.Equal(t, domain.GateAllowed, res.State)
		assert.Equal(t, []gateState{{domain.GatePending, 0}, {domain.GateAllowed, 0}}, log.all())
		assert.Empty(t, nav.Calls())
	})

	t.Run("Should count down before handing over the redirect", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{Status: domain.StatusCanceled}, nil)
		audit := &recordingAudit{}
		gate := usecase.NewEntitlementGate(svc, nil, time.Second, nil, audit)
		log := &stateLog{}
		var target string

		gate.Guard(context.Background(), "user-1", usecase.GateHooks{
			OnState:  log.record,
			OnDenied: func(to string) { target = to },
		})
		assert.Equal(t, domain.PathBillingLocked, target)
		assert.Equal(t, []gateState{
			{domain.GatePending, 0},
			{domain.GateDenied, 1},
			{domain.GateDenied, 0},
		}, log.all())
		assert.True(t, audit.has("gate_denied"))
	})

	t.Run("Should hard navigate when no redirect hook is given", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{Status: domain.StatusNone}, nil)
		nav := &historyNavigator{}
		gate := usecase.NewEntitlementGate(svc, nav, 0, nil, nil)

		gate.Guard(context.Background(), "user-1", usecase.GateHooks{})
		assert.Equal(t, []string{domain.PathBillingLocked}, nav.Calls())
	})

	t.Run("Should stop counting when the view goes away", func(t *testing.T) {
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{Status: domain.StatusPaused}, nil)
		nav := &historyNavigator{}
		gate := usecase.NewEntitlementGate(svc, nav, time.Minute, nil, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		res := gate.Guard(ctx, "user-1", usecase.GateHooks{})
		assert.Equal(t, domain.GateDenied, res.State)
		assert.Empty(t, nav.Calls())
	})
}
