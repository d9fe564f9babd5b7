package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"jetsuite-backend/config"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/internal/repository/postgres"
	"jetsuite-backend/internal/usecase"
	"jetsuite-backend/pkg/auth"
	"jetsuite-backend/pkg/database"
	"jetsuite-backend/pkg/logger"
	pkgredis "jetsuite-backend/pkg/redis"
	"jetsuite-backend/pkg/security"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

// tab is the simulated browser location. The guard navigates it directly;
// user navigation goes through shell.goTo so the reconciler hears about it.
type tab struct {
	mu   sync.Mutex
	path string
	out  io.Writer
}

func (t *tab) Navigate(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "  redirect %s -> %s\n", t.path, path)
	t.path = path
	return nil
}

func (t *tab) set(path string) {
	t.mu.Lock()
	t.path = path
	t.mu.Unlock()
}

func (t *tab) location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// lockedWriter serializes output from the shell and the reconciler goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// services are the backends one shell session talks to.
type services struct {
	verifier     usecase.TokenVerifier
	entitlements domain.EntitlementService
	profiles     domain.ProfileStore
	deniedPath   string
	cleanup      func()
}

func buildServices(ctx context.Context, opts *options) (*services, error) {
	if opts.offline {
		logger.Init("warn")
		subs, err := newOfflineSubscriptions(opts.subscription)
		if err != nil {
			return nil, err
		}
		return &services{
			verifier:     offlineVerifier{},
			entitlements: usecase.NewEntitlementUsecase(subs, nil, usecase.EntitlementRedirects{}),
			profiles:     offlineProfiles{count: opts.profiles},
			deniedPath:   domain.PathPricing,
			cleanup:      func() {},
		}, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("connect database (use --offline to run without one): %w", err)
	}
	cleanup := []func(){pool.Close}

	var cache usecase.EntitlementCache
	client, err := pkgredis.NewClient(ctx, pkgredis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
	switch {
	case err == nil:
		cache = pkgredis.NewJSONCache(client, "entitlement:", cfg.Guard.EntitlementCacheTTL)
		cleanup = append(cleanup, func() { _ = client.Close() })
	case !errors.Is(err, pkgredis.ErrNotConfigured):
		logger.Log.Warn("Redis unavailable, continuing without cache", "error", err)
	}

	var jwks *auth.Provider
	if url := cfg.JWKSURL(); url != "" {
		jwks = auth.NewProvider(url)
	}

	return &services{
		verifier: auth.NewVerifier(cfg.SupabaseJWTSecret, jwks),
		entitlements: usecase.NewEntitlementUsecase(postgres.NewSubscriptionRepository(pool), cache, usecase.EntitlementRedirects{
			Denied:        cfg.Guard.DeniedRedirect,
			PaymentFailed: cfg.Guard.PaymentFailedRedirect,
		}),
		profiles:   postgres.NewBusinessProfileRepository(pool),
		deniedPath: cfg.Guard.DeniedRedirect,
		cleanup: func() {
			for i := len(cleanup) - 1; i >= 0; i-- {
				cleanup[i]()
			}
		},
	}, nil
}

type shell struct {
	out           io.Writer
	tab           *tab
	provider      *usecase.TokenIdentityProvider
	newReconciler func(start string) *usecase.AccessReconciler
	reconciler    *usecase.AccessReconciler // nil while a static page is loaded
	gate          *usecase.EntitlementGate
	settle        time.Duration
	view          domain.RenderedView
}

func runShell(cmd *cobra.Command, opts *options) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := buildServices(ctx, opts)
	if err != nil {
		return err
	}
	defer svc.cleanup()

	sh := newShell(cmd.OutOrStdout(), svc, opts)
	fmt.Fprintf(sh.out, "tab opened at %s\n", sh.tab.location())

	// Static pages are decided once from the startup location and never see the guard.
	if view, ok := usecase.StaticView(opts.path); ok {
		sh.view = view
		fmt.Fprintf(sh.out, "  view %s at %s\n", view.View, view.Path)
	} else {
		sh.boot(ctx, sh.tab.location())
	}

	return sh.loop(ctx, cmd.InOrStdin())
}

func newShell(w io.Writer, svc *services, opts *options) *shell {
	out := &lockedWriter{w: w}
	t := &tab{path: domain.NormalizePath(opts.path), out: out}
	provider := usecase.NewTokenIdentityProvider(opts.token, svc.verifier, nil)
	audit := security.NopRecorder{}

	return &shell{
		out:      out,
		tab:      t,
		provider: provider,
		newReconciler: func(start string) *usecase.AccessReconciler {
			return usecase.NewAccessReconciler(usecase.ReconcilerDeps{
				Identity:     provider,
				Entitlements: svc.entitlements,
				Profiles:     svc.profiles,
				Navigator:    t,
				Logger:       logger.Log,
				Audit:        audit,
			}, usecase.ReconcilerConfig{SessionTimeout: opts.timeout, DeniedRedirect: svc.deniedPath}, start)
		},
		gate:   usecase.NewEntitlementGate(svc.entitlements, t, opts.countdown, logger.Log, audit),
		settle: opts.settle,
	}
}

// boot loads the application shell at path and starts its guard.
func (s *shell) boot(ctx context.Context, path string) {
	r := s.newReconciler(path)
	s.reconciler = r
	go func() { _ = r.Run(ctx) }()
}

func (s *shell) loop(ctx context.Context, in io.Reader) error {
	if err := s.render(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "go":
			if len(fields) != 2 {
				fmt.Fprintln(s.out, "usage: go <path>")
				continue
			}
			path := domain.NormalizePath(fields[1])
			s.tab.set(path)
			if s.reconciler == nil {
				s.boot(ctx, path)
				break
			}
			s.reconciler.SetPath(path)
		case "login":
			if len(fields) != 2 {
				fmt.Fprintln(s.out, "usage: login <token>")
				continue
			}
			identity, err := s.provider.SignIn(fields[1])
			if err != nil {
				fmt.Fprintf(s.out, "login failed: %v\n", err)
				continue
			}
			fmt.Fprintf(s.out, "signed in as %s\n", identity.ID)
		case "logout":
			s.provider.SignOut()
			fmt.Fprintln(s.out, "signed out")
		case "state":
			if err := s.printState(ctx); err != nil {
				return err
			}
			continue
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(s.out, "unknown command %q\n", fields[0])
			continue
		}

		if err := s.render(ctx); err != nil {
			return err
		}
	}
}

// render waits for the guard to settle and prints the view when it changes.
// Entering the application view runs the entitlement gate.
func (s *shell) render(ctx context.Context) error {
	if s.reconciler == nil {
		return nil
	}
	for {
		settleCtx, cancel := context.WithTimeout(ctx, s.settle)
		facts, err := s.reconciler.WaitSettled(settleCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("guard did not settle: %w", err)
		}

		view := domain.RenderedView{View: usecase.SelectView(facts), Path: facts.CurrentPath}
		entering := view.View == domain.ViewApp && s.view.View != domain.ViewApp
		if view != s.view {
			s.view = view
			fmt.Fprintf(s.out, "  view %s at %s\n", view.View, view.Path)
		}
		if !entering || facts.CurrentUserID == nil {
			return nil
		}

		var redirected bool
		s.gate.Guard(ctx, *facts.CurrentUserID, usecase.GateHooks{
			OnState: func(state domain.GateState, left int) {
				if state == domain.GateDenied {
					fmt.Fprintf(s.out, "  gate denied, leaving in %ds\n", left)
				}
			},
			OnDenied: func(to string) {
				_ = s.tab.Navigate(to)
				s.reconciler.SetPath(to)
				redirected = true
			},
		})
		if !redirected {
			return nil
		}
	}
}

func (s *shell) printState(ctx context.Context) error {
	if s.reconciler == nil {
		fmt.Fprintf(s.out, "static page %s, guard not running\n", s.view.Path)
		return nil
	}
	facts, err := s.reconciler.Snapshot(ctx)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(raw))
	return nil
}
