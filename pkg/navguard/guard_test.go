package navguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AshhadS/gymapp/pkg/apiclient"
	"github.com/AshhadS/gymapp/pkg/session"
)

// blockingVerifier serves a real session.Cache in tests. Verify blocks on
// gate when one is set, which lets a test hold restoration open.
type blockingVerifier struct {
	gate      chan struct{}
	verifyErr error
	principal apiclient.Principal
}

func (v *blockingVerifier) Login(context.Context, string, string) (*apiclient.AuthResult, error) {
	return nil, errors.New("not used")
}

func (v *blockingVerifier) Verify(ctx context.Context, _ string) (*apiclient.Principal, error) {
	if v.gate != nil {
		select {
		case <-v.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if v.verifyErr != nil {
		return nil, v.verifyErr
	}
	p := v.principal
	return &p, nil
}

func authenticatedGuard(t *testing.T, role string) *Guard {
	t.Helper()
	verifier := &blockingVerifier{principal: apiclient.Principal{ID: "u1", Username: "alice", Role: role}}
	cache := session.New(verifier, session.NewMemoryStore("stored-token"), time.Second)
	if state, err := cache.Restore(context.Background()); err != nil || state != session.StateAuthenticated {
		t.Fatalf("restore: state=%v err=%v", state, err)
	}
	return New(cache, DefaultRoutes())
}

func guestGuard(t *testing.T) *Guard {
	t.Helper()
	verifier := &blockingVerifier{}
	cache := session.New(verifier, session.NewMemoryStore(""), time.Second)
	return New(cache, DefaultRoutes())
}

// While a stored credential is still being revalidated, no decision may be
// produced; abandoning the wait yields Undetermined, never Allowed.
func TestDecisionDefersUntilRestoreSettles(t *testing.T) {
	gate := make(chan struct{})
	verifier := &blockingVerifier{
		gate:      gate,
		principal: apiclient.Principal{ID: "u1", Username: "alice", Role: "client"},
	}
	cache := session.New(verifier, session.NewMemoryStore("stored-token"), time.Second)
	guard := New(cache, DefaultRoutes())

	type outcome struct {
		decision Decision
		err      error
	}
	results := make(chan outcome, 1)
	go func() {
		d, err := guard.Decide(context.Background(), "/client")
		results <- outcome{d, err}
	}()

	select {
	case got := <-results:
		t.Fatalf("decision arrived before restore settled: %+v", got.decision)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)

	select {
	case got := <-results:
		if got.err != nil {
			t.Fatalf("Decide: %v", got.err)
		}
		if got.decision.Kind != Allowed {
			t.Fatalf("expected Allowed after restore, got %+v", got.decision)
		}
	case <-time.After(time.Second):
		t.Fatal("decision never arrived")
	}

	// A second navigation while a restore is pending, abandoned by its
	// caller, must come back Undetermined rather than guessing.
	verifier2 := &blockingVerifier{gate: make(chan struct{})}
	cache2 := session.New(verifier2, session.NewMemoryStore("stored-token"), time.Second)
	guard2 := New(cache2, DefaultRoutes())

	go guard2.Decide(context.Background(), "/client") // holds the restore open

	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	decision, err := guard2.Decide(ctx, "/client")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if decision.Kind != Undetermined {
		t.Fatalf("expected Undetermined, got %+v", decision)
	}
}

func TestUnauthenticatedRedirectsToLoginWithReturnPath(t *testing.T) {
	guard := guestGuard(t)

	decision, err := guard.Decide(context.Background(), "/client")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Kind != RedirectToLogin || decision.Target != "/login" {
		t.Fatalf("expected redirect to /login, got %+v", decision)
	}
	if decision.ReturnTo != "/client" {
		t.Fatalf("expected the requested path preserved, got %q", decision.ReturnTo)
	}
}

func TestWrongRoleRedirectsToOwnDashboard(t *testing.T) {
	guard := authenticatedGuard(t, "trainer")

	decision, err := guard.Decide(context.Background(), "/client")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Kind != RedirectToOwnDashboard || decision.Target != "/trainer" {
		t.Fatalf("expected redirect to /trainer, got %+v", decision)
	}
}

func TestMatchingRoleIsAllowed(t *testing.T) {
	guard := authenticatedGuard(t, "trainer")

	decision, err := guard.Decide(context.Background(), "/trainer")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Kind != Allowed {
		t.Fatalf("expected Allowed, got %+v", decision)
	}
}

func TestAuthenticatedBouncedOffGuestOnlyRoutes(t *testing.T) {
	guard := authenticatedGuard(t, "client")

	for _, path := range []string{"/login", "/signup"} {
		decision, err := guard.Decide(context.Background(), path)
		if err != nil {
			t.Fatalf("Decide(%s): %v", path, err)
		}
		if decision.Kind != RedirectToOwnDashboard || decision.Target != "/client" {
			t.Fatalf("Decide(%s): expected redirect to /client, got %+v", path, decision)
		}
	}
}

func TestGuestMayVisitGuestOnlyAndPublicRoutes(t *testing.T) {
	guard := guestGuard(t)

	for _, path := range []string{"/", "/login", "/signup"} {
		decision, err := guard.Decide(context.Background(), path)
		if err != nil {
			t.Fatalf("Decide(%s): %v", path, err)
		}
		if decision.Kind != Allowed {
			t.Fatalf("Decide(%s): expected Allowed, got %+v", path, decision)
		}
	}
}

func TestUnknownRouteIsAllowed(t *testing.T) {
	guard := guestGuard(t)

	decision, err := guard.Decide(context.Background(), "/nowhere")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Kind != Allowed {
		t.Fatalf("expected Allowed for unknown route, got %+v", decision)
	}
}

func TestFailedRestoreBehavesAsGuest(t *testing.T) {
	verifier := &blockingVerifier{verifyErr: errors.New("Token is not valid")}
	store := session.NewMemoryStore("stale-token")
	cache := session.New(verifier, store, time.Second)
	guard := New(cache, DefaultRoutes())

	decision, err := guard.Decide(context.Background(), "/client")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Kind != RedirectToLogin {
		t.Fatalf("expected redirect to login after failed restore, got %+v", decision)
	}
	if token, _ := store.Load(); token != "" {
		t.Fatalf("expected stale token cleared, got %q", token)
	}
}
