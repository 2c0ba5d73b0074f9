// Package identity talks to the remote identity provider: account creation,
// password sign-in and password reset e-mails.
package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/eden/internal/client/models"
	"github.com/dmitrijs2005/eden/internal/client/remote"
	"github.com/dmitrijs2005/eden/internal/logging"
)

// Session is a signed-in remote account.
type Session struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the ID token is past its expiry at now. A session
// without a known expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Provider is the identity provider as seen by the orchestrator.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// Client normalizes input before dispatching to a backend Provider (usually a
// FirebaseBackend) and guarantees that every failure is a *remote.Error.
type Client struct {
	backend Provider
	log     logging.Logger
}

func NewClient(b Provider, l logging.Logger) *Client {
	if l == nil {
		l = logging.Nop()
	}
	return &Client{backend: b, log: l.With("component", "identity")}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = models.NormalizeEmail(email)
	s, err := c.backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, c.fail(ctx, "sign up", err)
	}
	return s, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = models.NormalizeEmail(email)
	s, err := c.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, c.fail(ctx, "sign in", err)
	}
	return s, nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	if err := c.backend.SendPasswordReset(ctx, email); err != nil {
		return c.fail(ctx, "password reset", err)
	}
	return nil
}

func (c *Client) fail(ctx context.Context, op string, err error) error {
	out := toRemoteError(err)
	c.log.Debug(ctx, "identity call failed", "operation", op, "code", out.Code, "error", err)
	return out
}

func toRemoteError(err error) *remote.Error {
	var rerr *remote.Error
	if errors.As(err, &rerr) {
		return rerr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return &remote.Error{Message: err.Error(), Err: err}
	case remote.IsUnavailable(err):
		return &remote.Error{Code: remote.CodeNetworkRequestFailed, Message: err.Error(), Err: err}
	}
	return &remote.Error{Code: remote.CodeInternal, Message: err.Error(), Err: err}
}

// SessionHolder keeps the current remote session. It is safe for concurrent
// use and doubles as the token source of the remote document store.
type SessionHolder struct {
	mu      sync.RWMutex
	session *Session
}

func (h *SessionHolder) Get() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

func (h *SessionHolder) Set(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = s
}

func (h *SessionHolder) Clear() {
	h.Set(nil)
}

// IDToken returns the ID token of the current session, or "" without one.
func (h *SessionHolder) IDToken() string {
	if s := h.Get(); s != nil {
		return s.IDToken
	}
	return ""
}
