// Package auth keeps the terminal client's authentication session and
// reports its transitions, the way a hosted auth SDK does.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/client/api"
	"github.com/palavraviva/study-platform/internal/core/domain"
)

// Backend is the server surface the client signs in against.
type Backend interface {
	SignUp(ctx context.Context, in api.SignUpRequest) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	UpdateUser(ctx context.Context, accessToken string, in api.UpdateUserRequest) (*domain.User, error)
}

// Client owns the current session. It implements ports.SessionSource.
type Client struct {
	backend Backend
	margin  time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *domain.Session
	subs    map[uint64]func(domain.AuthEvent)
	nextSub uint64

	// refreshMu serializes token rotation; a refresh token is single use.
	refreshMu sync.Mutex
}

// New returns a signed-out Client. Sessions expiring within margin are
// refreshed before they are handed out.
func New(backend Backend, margin time.Duration, log zerolog.Logger) *Client {
	return &Client{
		backend: backend,
		margin:  margin,
		log:     log.With().Str("component", "auth_client").Logger(),
		now:     time.Now,
		subs:    make(map[uint64]func(domain.AuthEvent)),
	}
}

// SubscribeToSessionChanges registers fn for every session transition.
func (c *Client) SubscribeToSessionChanges(fn func(domain.AuthEvent)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// GetCurrentSession returns the current session, refreshing it first when
// it is about to expire. It returns nil when signed out. A refresh token the
// server no longer accepts signs the client out.
func (c *Client) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	sess := c.current()
	if sess == nil || !sess.ExpiresWithin(c.now(), c.margin) {
		return sess, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	// Another caller may have rotated the tokens while this one waited.
	sess = c.current()
	if sess == nil || !sess.ExpiresWithin(c.now(), c.margin) {
		return sess, nil
	}
	return c.rotate(ctx, sess)
}

// SignUp creates the account and signs in with it.
func (c *Client) SignUp(ctx context.Context, in api.SignUpRequest) (*domain.Session, error) {
	if _, err := c.backend.SignUp(ctx, in); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return c.SignIn(ctx, in.Email, in.Password)
}

// SignIn replaces the current session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	sess, err := c.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	c.set(sess, domain.AuthSignedIn)
	return clone(sess), nil
}

// SignOut revokes the refresh token and drops the session. A failed
// revocation is logged; the local session is dropped regardless.
func (c *Client) SignOut(ctx context.Context) {
	sess := c.current()
	if sess == nil {
		return
	}
	if err := c.backend.SignOut(ctx, sess.RefreshToken); err != nil {
		c.log.Warn().Err(err).Str("user_id", sess.User.ID).Msg("revoke refresh token failed")
	}
	c.set(nil, domain.AuthSignedOut)
}

// Refresh rotates the session's tokens. It returns nil without error when
// signed out.
func (c *Client) Refresh(ctx context.Context) (*domain.Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	sess := c.current()
	if sess == nil {
		return nil, nil
	}
	return c.rotate(ctx, sess)
}

// rotate exchanges the refresh token of sess. Callers hold refreshMu.
func (c *Client) rotate(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	next, err := c.backend.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			c.log.Info().Str("user_id", sess.User.ID).Msg("refresh token rejected, signing out")
			c.set(nil, domain.AuthSignedOut)
			return nil, nil
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	c.set(next, domain.AuthTokenRefreshed)
	return clone(next), nil
}

// UpdateMetadata applies new identity metadata to the current session and
// reports user_updated.
func (c *Client) UpdateMetadata(meta domain.IdentityMetadata) error {
	sess := c.current()
	if sess == nil {
		return ErrSignedOut
	}
	sess.User.Metadata = meta
	c.set(sess, domain.AuthUserUpdated)
	return nil
}

// UpdateUser changes the account's email and/or password and reports
// user_updated carrying the new email.
func (c *Client) UpdateUser(ctx context.Context, in api.UpdateUserRequest) (*domain.Session, error) {
	sess, err := c.GetCurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSignedOut
	}
	user, err := c.backend.UpdateUser(ctx, sess.AccessToken, in)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	// The account may have signed out while the request was in flight.
	cur := c.current()
	if cur == nil || cur.User.ID != user.ID {
		return nil, ErrSignedOut
	}
	cur.User.Email = user.Email
	c.set(cur, domain.AuthUserUpdated)
	return clone(cur), nil
}

// AutoRefresh refreshes the session on every tick until ctx is done.
func (c *Client) AutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := c.GetCurrentSession(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.log.Warn().Err(err).Msg("background refresh failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// ErrSignedOut is returned by calls that need a session.
var ErrSignedOut = errors.New("not signed in")

// current returns a copy of the session, or nil.
func (c *Client) current() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.session)
}

// set stores sess and notifies subscribers outside the lock. Each
// subscriber receives its own copy.
func (c *Client) set(sess *domain.Session, kind domain.AuthEventKind) {
	c.mu.Lock()
	c.session = clone(sess)
	subs := make([]func(domain.AuthEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.log.Debug().Str("event", string(kind)).Msg("session changed")
	for _, fn := range subs {
		fn(domain.AuthEvent{Kind: kind, Session: clone(sess)})
	}
}

func clone(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
