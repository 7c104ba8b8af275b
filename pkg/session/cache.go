// Package session holds the client-side credential and principal across
// the life of a process, persisting the token durably and revalidating it
// against the server on startup.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/AshhadS/gymapp/pkg/apiclient"
)

type State int

const (
	// StateEmpty means no credential is held.
	StateEmpty State = iota
	// StateRestoring means a durable credential exists and a revalidation
	// call is in flight.
	StateRestoring
	// StateAuthenticated means the held principal is backed by a
	// credential confirmed valid as of the last revalidation.
	StateAuthenticated
	// StateInvalid means revalidation failed; durable storage has been
	// cleared and the cache behaves like Empty until the next login.
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Verifier is the slice of the API the cache needs.
type Verifier interface {
	Login(ctx context.Context, username, password string) (*apiclient.AuthResult, error)
	Verify(ctx context.Context, token string) (*apiclient.Principal, error)
}

type Cache struct {
	api     Verifier
	store   TokenStore
	timeout time.Duration

	mu         sync.Mutex
	state      State
	token      string
	principal  *apiclient.Principal
	attempted  bool          // restoration has run (or found nothing to restore)
	inflight   chan struct{} // non-nil while a restore call is in flight
	restoreErr error
}

// New builds a cache in the Empty state. timeout bounds every network call
// the cache makes; a restore that exceeds it fails closed.
func New(api Verifier, store TokenStore, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Cache{api: api, store: store, timeout: timeout}
}

// Restore revalidates a durably stored credential. Only the first caller
// issues the verification call; concurrent and later callers share its
// outcome. ctx only bounds this caller's wait — an abandoned wait leaves
// the in-flight restore to finish and settle the state for everyone else.
func (c *Cache) Restore(ctx context.Context) (State, error) {
	c.mu.Lock()

	if ch := c.inflight; ch != nil {
		c.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return StateRestoring, ctx.Err()
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.state, c.restoreErr
	}

	if c.attempted {
		defer c.mu.Unlock()
		return c.state, c.restoreErr
	}

	token, err := c.store.Load()
	if err != nil || token == "" {
		c.attempted = true
		c.restoreErr = err
		defer c.mu.Unlock()
		return c.state, err
	}

	c.state = StateRestoring
	ch := make(chan struct{})
	c.inflight = ch
	c.mu.Unlock()

	// Detached from the caller's ctx so one impatient caller cannot leave
	// the cache stuck in Restoring; the cache timeout is the only bound.
	vctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	principal, verifyErr := c.api.Verify(vctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempted = true
	c.inflight = nil
	// A login (or logout) that landed during the verification call has
	// already settled the state; the stale restore outcome is discarded.
	if c.state == StateRestoring {
		if verifyErr != nil {
			c.state = StateInvalid
			c.token = ""
			c.principal = nil
			c.restoreErr = verifyErr
			_ = c.store.Clear()
		} else {
			c.state = StateAuthenticated
			c.token = token
			c.principal = principal
			c.restoreErr = nil
		}
	}
	close(ch)
	return c.state, c.restoreErr
}

// Login exchanges credentials for a fresh token. On failure the cache is
// left exactly as it was; no partial login.
func (c *Cache) Login(ctx context.Context, username, password string) (*apiclient.Principal, error) {
	lctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.api.Login(lctx, username, password)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.token = result.Token
	principal := result.User
	c.principal = &principal
	c.attempted = true
	c.restoreErr = nil
	c.mu.Unlock()

	// Persistence is best-effort: a failed write costs the session on the
	// next startup, not the current one.
	_ = c.store.Save(result.Token)

	return &principal, nil
}

// Logout clears in-memory and durable state unconditionally.
func (c *Cache) Logout() {
	c.mu.Lock()
	c.state = StateEmpty
	c.token = ""
	c.principal = nil
	c.attempted = true
	c.restoreErr = nil
	c.mu.Unlock()

	_ = c.store.Clear()
}

func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Principal returns a copy of the authenticated principal, or nil.
func (c *Cache) Principal() *apiclient.Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.principal == nil {
		return nil
	}
	p := *c.principal
	return &p
}

// Token returns the credential attached to outgoing requests, empty unless
// authenticated.
func (c *Cache) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated {
		return ""
	}
	return c.token
}
