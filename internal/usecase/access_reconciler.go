package usecase

import (
	"context"
	"errors"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/security"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ReconcilerConfig holds the tunables of an AccessReconciler.
type ReconcilerConfig struct {
	// SessionTimeout bounds the one-time session probe.
	SessionTimeout time.Duration
	// DeniedRedirect is used when entitlement is denied without a target
	// or when the entitlement check itself fails.
	DeniedRedirect string
}

// DefaultReconcilerConfig returns the observed production values.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		SessionTimeout: 5 * time.Second,
		DeniedRedirect: domain.PathPricing,
	}
}

// AccessReconciler owns one fact set and turns identity, entitlement and
// onboarding changes into navigation decisions. All state is mutated by the
// Run goroutine only; everything else talks to it through messages.
type AccessReconciler struct {
	identity     domain.IdentityProvider
	entitlements domain.EntitlementService
	profiles     domain.ProfileStore
	navigator    domain.Navigator
	cfg          ReconcilerConfig
	log          *slog.Logger
	audit        security.Recorder

	events chan reconcilerEvent
	done   chan struct{}

	// owned by Run
	facts       domain.AccessFacts
	epoch       string
	lastWatched *domain.WatchedFacts
	queue       []reconcilerEvent
	waiters     []chan domain.AccessFacts
	evaluations int
}

// ReconcilerDeps groups the collaborators of an AccessReconciler.
type ReconcilerDeps struct {
	Identity     domain.IdentityProvider
	Entitlements domain.EntitlementService
	Profiles     domain.ProfileStore
	Navigator    domain.Navigator
	Logger       *slog.Logger
	Audit        security.Recorder
}

func NewAccessReconciler(deps ReconcilerDeps, cfg ReconcilerConfig, initialPath string) *AccessReconciler {
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultReconcilerConfig().SessionTimeout
	}
	if cfg.DeniedRedirect == "" {
		cfg.DeniedRedirect = DefaultReconcilerConfig().DeniedRedirect
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	audit := deps.Audit
	if audit == nil {
		audit = security.NopRecorder{}
	}

	return &AccessReconciler{
		identity:     deps.Identity,
		entitlements: deps.Entitlements,
		profiles:     deps.Profiles,
		navigator:    deps.Navigator,
		cfg:          cfg,
		log:          log,
		audit:        audit,
		events:       make(chan reconcilerEvent, 64),
		done:         make(chan struct{}),
		facts:        domain.AccessFacts{CurrentPath: domain.NormalizePath(initialPath)},
	}
}

// ============================================================================
// Messages
// ============================================================================

type reconcilerEvent interface{}

type sessionProbed struct {
	identity *domain.Identity
	err      error
}

type sessionChanged struct {
	event domain.SessionEvent
}

type accessResolved struct {
	epoch  string
	result *domain.AccessResult
	err    error
}

type profileResolved struct {
	epoch string
	count int
	err   error
}

type pathChanged struct {
	path string
}

type snapshotRequest struct {
	reply   chan domain.AccessFacts
	settled bool
}

type evaluationCountRequest struct {
	reply chan int
}

// ============================================================================
// Public API
// ============================================================================

// Run probes the current session, subscribes to session changes and processes
// messages until ctx is done.
func (r *AccessReconciler) Run(ctx context.Context) error {
	defer close(r.done)

	unsubscribe := r.identity.OnSessionChange(func(ev domain.SessionEvent) {
		r.post(sessionChanged{event: ev})
	})
	defer unsubscribe()

	go r.probeSession(ctx)

	r.reconcile()
	for {
		select {
		case <-ctx.Done():
			for _, w := range r.waiters {
				close(w)
			}
			return ctx.Err()
		case ev := <-r.events:
			r.handle(ctx, ev)
			for len(r.queue) > 0 {
				next := r.queue[0]
				r.queue = r.queue[1:]
				r.handle(ctx, next)
			}
			r.notifyWaiters()
		}
	}
}

// SetPath reports a location change made outside the guard (link click, back button).
func (r *AccessReconciler) SetPath(path string) {
	r.post(pathChanged{path: path})
}

// OnLoginSuccess seeds the fact set for a freshly signed-in identity.
func (r *AccessReconciler) OnLoginSuccess(identity domain.Identity) {
	r.post(sessionChanged{event: domain.SessionEvent{Type: domain.SessionSignedIn, Identity: &identity}})
}

// OnLogout clears the fact set.
func (r *AccessReconciler) OnLogout() {
	r.post(sessionChanged{event: domain.SessionEvent{Type: domain.SessionSignedOut}})
}

// Snapshot returns a copy of the current facts.
func (r *AccessReconciler) Snapshot(ctx context.Context) (domain.AccessFacts, error) {
	return r.request(ctx, false)
}

// WaitSettled blocks until no resolution is pending and every navigation the
// guard issued has been applied, then returns the facts.
func (r *AccessReconciler) WaitSettled(ctx context.Context) (domain.AccessFacts, error) {
	return r.request(ctx, true)
}

// Evaluations returns how many times the policy has been evaluated.
func (r *AccessReconciler) Evaluations(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if !r.send(ctx, evaluationCountRequest{reply: reply}) {
		return 0, errReconcilerStopped(ctx)
	}
	select {
	case n := <-reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (r *AccessReconciler) request(ctx context.Context, settled bool) (domain.AccessFacts, error) {
	reply := make(chan domain.AccessFacts, 1)
	if !r.send(ctx, snapshotRequest{reply: reply, settled: settled}) {
		return domain.AccessFacts{}, errReconcilerStopped(ctx)
	}
	select {
	case facts, ok := <-reply:
		if !ok {
			return domain.AccessFacts{}, errReconcilerStopped(ctx)
		}
		return facts, nil
	case <-ctx.Done():
		return domain.AccessFacts{}, ctx.Err()
	case <-r.done:
		return domain.AccessFacts{}, errReconcilerStopped(ctx)
	}
}

var ErrReconcilerStopped = errors.New("access reconciler stopped")

func errReconcilerStopped(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrReconcilerStopped
}

func (r *AccessReconciler) post(ev reconcilerEvent) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

func (r *AccessReconciler) send(ctx context.Context, ev reconcilerEvent) bool {
	select {
	case r.events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-r.done:
		return false
	}
}

// ============================================================================
// Transitions
// ============================================================================

func (r *AccessReconciler) handle(ctx context.Context, ev reconcilerEvent) {
	switch e := ev.(type) {
	case sessionProbed:
		r.onSessionProbed(ctx, e)
	case sessionChanged:
		r.onSessionChanged(ctx, e.event)
	case accessResolved:
		r.onAccessResolved(ctx, e)
	case profileResolved:
		r.onProfileResolved(ctx, e)
	case pathChanged:
		r.facts.CurrentPath = domain.NormalizePath(e.path)
	case snapshotRequest:
		if e.settled && !r.settled() {
			r.waiters = append(r.waiters, e.reply)
			return
		}
		e.reply <- r.copyFacts()
		return
	case evaluationCountRequest:
		e.reply <- r.evaluations
		return
	}
	r.reconcile()
}

func (r *AccessReconciler) onSessionProbed(ctx context.Context, e sessionProbed) {
	if r.facts.SessionChecked {
		// A session change event already arrived and is fresher than the probe.
		return
	}
	r.facts.SessionChecked = true

	if e.err != nil {
		r.log.Warn("Session probe failed, continuing as logged out", "error", e.err)
		r.audit.Log(ctx, security.SecurityEvent{
			Event:   security.EventSessionProbeFailed,
			Path:    r.facts.CurrentPath,
			Details: map[string]interface{}{"error": e.err.Error()},
		})
		r.clearSession()
		return
	}
	if e.identity == nil {
		r.clearSession()
		return
	}
	r.beginSession(ctx, *e.identity)
}

func (r *AccessReconciler) onSessionChanged(ctx context.Context, ev domain.SessionEvent) {
	r.facts.SessionChecked = true
	switch ev.Type {
	case domain.SessionSignedIn:
		if ev.Identity == nil || ev.Identity.ID == "" {
			r.log.Warn("Ignoring signed_in event without identity")
			return
		}
		r.beginSession(ctx, *ev.Identity)
	case domain.SessionSignedOut:
		r.clearSession()
	default:
		r.log.Warn("Unknown session event", "type", ev.Type)
	}
}

// beginSession restarts resolution from scratch under a new epoch.
func (r *AccessReconciler) beginSession(ctx context.Context, identity domain.Identity) {
	r.epoch = uuid.NewString()

	userID := identity.ID
	email := identity.Email
	r.facts.IsLoggedIn = true
	r.facts.CurrentUserID = &userID
	r.facts.CurrentUserEmail = &email
	r.resetResolution()

	r.log.Info("Session started", "user_id", userID, "epoch", r.epoch)
	go r.probeAccess(ctx, r.epoch, userID)
	go r.probeProfiles(ctx, r.epoch, userID)
}

func (r *AccessReconciler) clearSession() {
	r.epoch = ""
	r.facts.IsLoggedIn = false
	r.facts.CurrentUserID = nil
	r.facts.CurrentUserEmail = nil
	r.resetResolution()
}

func (r *AccessReconciler) resetResolution() {
	r.facts.IsAccessTierResolved = false
	r.facts.SubscriptionRedirect = nil
	r.facts.IsOnboardingResolved = false
	r.facts.HasAnyBusinessProfile = false
}

func (r *AccessReconciler) stale(ctx context.Context, epoch, probe string) bool {
	if epoch == r.epoch && r.facts.IsLoggedIn {
		return false
	}
	r.log.Info("Dropping stale probe result", "probe", probe, "probe_epoch", epoch, "current_epoch", r.epoch)
	r.audit.Log(ctx, security.SecurityEvent{
		Event:   security.EventStaleProbeDropped,
		Details: map[string]interface{}{"probe": probe},
	})
	return true
}

func (r *AccessReconciler) onAccessResolved(ctx context.Context, e accessResolved) {
	if r.stale(ctx, e.epoch, "entitlement") || r.facts.IsAccessTierResolved {
		return
	}
	r.facts.IsAccessTierResolved = true

	switch {
	case e.err != nil:
		r.log.Error("Entitlement check failed, treating as denied", "user_id", r.userID(), "error", e.err)
		r.audit.Log(ctx, security.SecurityEvent{
			Event:        security.EventEntitlementCheckFailed,
			SubjectType:  "user_id",
			SubjectValue: r.userID(),
			Details:      map[string]interface{}{"error": e.err.Error()},
		})
		target := r.cfg.DeniedRedirect
		r.facts.SubscriptionRedirect = &target
	case e.result == nil || !e.result.HasAccess:
		target := r.cfg.DeniedRedirect
		status := domain.StatusNone
		if e.result != nil {
			status = e.result.Status
			if e.result.RedirectTo != "" {
				target = e.result.RedirectTo
			}
		}
		r.audit.Log(ctx, security.SecurityEvent{
			Event:        security.EventEntitlementDenied,
			SubjectType:  "user_id",
			SubjectValue: r.userID(),
			Details:      map[string]interface{}{"status": string(status), "redirect_to": target},
		})
		r.facts.SubscriptionRedirect = &target
	default:
		r.facts.SubscriptionRedirect = nil
	}
}

func (r *AccessReconciler) onProfileResolved(ctx context.Context, e profileResolved) {
	if r.stale(ctx, e.epoch, "profile") || r.facts.IsOnboardingResolved {
		return
	}
	r.facts.IsOnboardingResolved = true

	if e.err != nil {
		r.log.Error("Profile check failed, treating as no profile", "user_id", r.userID(), "error", e.err)
		r.audit.Log(ctx, security.SecurityEvent{
			Event:        security.EventProfileCheckFailed,
			SubjectType:  "user_id",
			SubjectValue: r.userID(),
			Details:      map[string]interface{}{"error": e.err.Error()},
		})
		r.facts.HasAnyBusinessProfile = false
		return
	}
	r.facts.HasAnyBusinessProfile = e.count > 0
}

// ============================================================================
// Evaluation
// ============================================================================

// reconcile evaluates the policy when a watched fact changed since the last pass.
func (r *AccessReconciler) reconcile() {
	watched := r.facts.Watched()
	if r.lastWatched != nil && *r.lastWatched == watched {
		return
	}
	r.lastWatched = &watched
	r.evaluations++

	decision := EvaluateAccess(r.facts)
	if !decision.Navigate {
		return
	}
	r.navigate(decision)
}

// navigate never recurses: the path update is queued and evaluated on the next tick.
func (r *AccessReconciler) navigate(decision domain.NavigationDecision) {
	from := r.facts.CurrentPath
	if err := r.navigator.Navigate(decision.Target); err != nil {
		r.log.Error("Navigation failed", "from", from, "to", decision.Target, "error", err)
		r.audit.Log(context.Background(), security.SecurityEvent{
			Event:   security.EventNavigationFailed,
			Path:    from,
			Details: map[string]interface{}{"target": decision.Target, "error": err.Error()},
		})
		return
	}

	r.log.Info("Guard redirect", "from", from, "to", decision.Target, "reason", decision.Reason)
	r.audit.Log(context.Background(), security.SecurityEvent{
		Event:   security.EventGuardRedirect,
		Path:    from,
		Details: map[string]interface{}{"target": decision.Target, "reason": decision.Reason},
	})
	r.queue = append(r.queue, pathChanged{path: decision.Target})
}

func (r *AccessReconciler) settled() bool {
	return !r.facts.AwaitingResolution() && len(r.queue) == 0
}

func (r *AccessReconciler) notifyWaiters() {
	if len(r.waiters) == 0 || !r.settled() {
		return
	}
	facts := r.copyFacts()
	for _, w := range r.waiters {
		w <- facts
	}
	r.waiters = nil
}

func (r *AccessReconciler) copyFacts() domain.AccessFacts {
	f := r.facts
	f.CurrentUserID = cloneString(f.CurrentUserID)
	f.CurrentUserEmail = cloneString(f.CurrentUserEmail)
	f.SubscriptionRedirect = cloneString(f.SubscriptionRedirect)
	return f
}

func (r *AccessReconciler) userID() string {
	if r.facts.CurrentUserID == nil {
		return ""
	}
	return *r.facts.CurrentUserID
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ============================================================================
// Probes
// ============================================================================

func (r *AccessReconciler) probeSession(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, r.cfg.SessionTimeout)
	defer cancel()

	type result struct {
		identity *domain.Identity
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		identity, err := r.identity.GetCurrentSession(probeCtx)
		ch <- result{identity: identity, err: err}
	}()

	// Race the provider against the timer so a provider that ignores ctx cannot wedge the shell.
	select {
	case res := <-ch:
		r.post(sessionProbed{identity: res.identity, err: res.err})
	case <-probeCtx.Done():
		r.post(sessionProbed{err: probeCtx.Err()})
	}
}

func (r *AccessReconciler) probeAccess(ctx context.Context, epoch, userID string) {
	result, err := r.entitlements.CheckAccess(ctx, userID)
	r.post(accessResolved{epoch: epoch, result: result, err: err})
}

func (r *AccessReconciler) probeProfiles(ctx context.Context, epoch, userID string) {
	count, err := r.profiles.CountCompletedProfiles(ctx, userID)
	r.post(profileResolved{epoch: epoch, count: count, err: err})
}
