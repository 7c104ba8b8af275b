package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AshhadS/gymapp/pkg/apiclient"
)

type stubAPI struct {
	mu          sync.Mutex
	verifyCalls int
	verifyGate  chan struct{} // if non-nil, Verify blocks until closed
	verifyErr   error
	principal   apiclient.Principal
	loginCalls  int
	loginErr    error
	loginResult *apiclient.AuthResult
}

func (s *stubAPI) Login(_ context.Context, _, _ string) (*apiclient.AuthResult, error) {
	s.mu.Lock()
	s.loginCalls++
	s.mu.Unlock()
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResult, nil
}

func (s *stubAPI) Verify(ctx context.Context, _ string) (*apiclient.Principal, error) {
	s.mu.Lock()
	s.verifyCalls++
	gate := s.verifyGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	p := s.principal
	return &p, nil
}

func (s *stubAPI) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyCalls, s.loginCalls
}

func TestRestoreWithoutStoredTokenStaysEmpty(t *testing.T) {
	api := &stubAPI{}
	cache := New(api, NewMemoryStore(""), time.Second)

	state, err := cache.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if state != StateEmpty {
		t.Fatalf("expected Empty, got %v", state)
	}
	if verifies, _ := api.calls(); verifies != 0 {
		t.Fatalf("expected no verification call, got %d", verifies)
	}
}

func TestRestoreAuthenticatesFromStoredToken(t *testing.T) {
	api := &stubAPI{principal: apiclient.Principal{ID: "u1", Username: "alice", Role: "client"}}
	cache := New(api, NewMemoryStore("stored-token"), time.Second)

	state, err := cache.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if state != StateAuthenticated {
		t.Fatalf("expected Authenticated, got %v", state)
	}
	if p := cache.Principal(); p == nil || p.ID != "u1" {
		t.Fatalf("expected principal u1, got %+v", p)
	}
	if cache.Token() != "stored-token" {
		t.Fatalf("expected the stored token to be attached, got %q", cache.Token())
	}
}

// Concurrent callers must share one verification call and its outcome.
func TestRestoreIsSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	api := &stubAPI{
		principal:  apiclient.Principal{ID: "u1", Username: "alice", Role: "client"},
		verifyGate: gate,
	}
	cache := New(api, NewMemoryStore("stored-token"), time.Second)

	const callers = 5
	states := make(chan State, callers)
	for i := 0; i < callers; i++ {
		go func() {
			state, _ := cache.Restore(context.Background())
			states <- state
		}()
	}

	// Let everyone pile up behind the in-flight call, then release it.
	time.Sleep(20 * time.Millisecond)
	close(gate)

	for i := 0; i < callers; i++ {
		select {
		case state := <-states:
			if state != StateAuthenticated {
				t.Fatalf("caller %d: expected Authenticated, got %v", i, state)
			}
		case <-time.After(time.Second):
			t.Fatal("caller never unblocked")
		}
	}

	if verifies, _ := api.calls(); verifies != 1 {
		t.Fatalf("expected exactly 1 verification call, got %d", verifies)
	}
}

func TestRestoreFailureClearsDurableToken(t *testing.T) {
	api := &stubAPI{verifyErr: errors.New("Token is not valid")}
	store := NewMemoryStore("stale-token")
	cache := New(api, store, time.Second)

	state, err := cache.Restore(context.Background())
	if err == nil {
		t.Fatal("expected the verification error to surface")
	}
	if state != StateInvalid {
		t.Fatalf("expected Invalid, got %v", state)
	}
	if token, _ := store.Load(); token != "" {
		t.Fatalf("expected durable token cleared, got %q", token)
	}
	if cache.Token() != "" {
		t.Fatal("expected no token attached after failed restore")
	}

	// The failed outcome is settled; later callers reuse it.
	again, _ := cache.Restore(context.Background())
	if again != StateInvalid {
		t.Fatalf("expected settled Invalid, got %v", again)
	}
	if verifies, _ := api.calls(); verifies != 1 {
		t.Fatalf("expected no re-verification, got %d calls", verifies)
	}
}

// A verification call that hangs must fail closed, never stay Restoring.
func TestRestoreTimeoutFailsClosed(t *testing.T) {
	api := &stubAPI{verifyGate: make(chan struct{})} // never released
	cache := New(api, NewMemoryStore("stored-token"), 30*time.Millisecond)

	state, err := cache.Restore(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if state != StateInvalid {
		t.Fatalf("expected Invalid after timeout, got %v", state)
	}
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	api := &stubAPI{loginErr: &apiclient.APIError{StatusCode: 401, Msg: "Invalid credentials"}}
	store := NewMemoryStore("")
	cache := New(api, store, time.Second)

	_, err := cache.Login(context.Background(), "alice", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("expected the server message verbatim, got %q", err.Error())
	}
	if cache.State() != StateEmpty {
		t.Fatalf("expected Empty after failed login, got %v", cache.State())
	}
	if token, _ := store.Load(); token != "" {
		t.Fatal("expected nothing persisted on failed login")
	}
}

func TestLoginPersistsTokenAndLogoutClearsIt(t *testing.T) {
	api := &stubAPI{
		loginResult: &apiclient.AuthResult{
			Token: "fresh-token",
			User:  apiclient.Principal{ID: "u1", Username: "alice", Role: "client"},
		},
	}
	store := NewMemoryStore("")
	cache := New(api, store, time.Second)

	principal, err := cache.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if principal.Role != "client" {
		t.Fatalf("expected client principal, got %+v", principal)
	}
	if cache.State() != StateAuthenticated {
		t.Fatalf("expected Authenticated, got %v", cache.State())
	}
	if token, _ := store.Load(); token != "fresh-token" {
		t.Fatalf("expected token persisted, got %q", token)
	}

	cache.Logout()
	if cache.State() != StateEmpty {
		t.Fatalf("expected Empty after logout, got %v", cache.State())
	}
	if token, _ := store.Load(); token != "" {
		t.Fatalf("expected durable token cleared on logout, got %q", token)
	}
	if cache.Principal() != nil {
		t.Fatal("expected no principal after logout")
	}
}
