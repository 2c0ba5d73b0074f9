// Package services contains application services for the Eden client.
// This file defines the authentication service: remote-first sign up, sign
// in, password reset and profile access with transparent fallback to the
// on-device credential store when the remote service is unavailable.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/eden/internal/client/localauth"
	"github.com/dmitrijs2005/eden/internal/client/metrics"
	"github.com/dmitrijs2005/eden/internal/client/models"
	"github.com/dmitrijs2005/eden/internal/client/remote"
	"github.com/dmitrijs2005/eden/internal/client/remote/identity"
	"github.com/dmitrijs2005/eden/internal/client/remote/profiles"
	"github.com/dmitrijs2005/eden/internal/logging"
)

// Operation names used in logs and metrics.
const (
	OpSignUp        = "signup"
	OpSignIn        = "signin"
	OpPasswordReset = "password_reset"
	OpFetchProfile  = "fetch_profile"
	OpUpdateProfile = "update_profile"
	OpUploadAvatar  = "upload_avatar"
	OpSignOut       = "signout"
)

// LocalStore is the on-device credential store (localauth.Store).
type LocalStore interface {
	CreateUser(ctx context.Context, email, password string, fields models.SignUpFields) (*models.LocalUser, error)
	Authenticate(ctx context.Context, email, password string) (*models.LocalUser, error)
	CurrentUser(ctx context.Context) (*models.LocalUser, error)
	UpdateCurrentUser(ctx context.Context, upd models.ProfileUpdate) (*models.LocalUser, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	SignOut(ctx context.Context) error
	ResetAll(ctx context.Context) error
}

// ProfileStore is the remote profile store (profiles.Store).
type ProfileStore interface {
	Create(ctx context.Context, uid string, p models.Profile, birthDate *time.Time) error
	Get(ctx context.Context, uid string) (models.Profile, error)
	Update(ctx context.Context, uid string, upd models.ProfileUpdate) error
}

// AvatarStorage uploads profile photos (avatars.Storage).
type AvatarStorage interface {
	Upload(ctx context.Context, uid, contentType string, data []byte) (string, error)
}

// Remote bundles the handles of the remote services. A nil Identity means
// the remote backend is not configured and every operation goes straight to
// the local store.
type Remote struct {
	Identity identity.Provider
	Profiles ProfileStore
	Avatars  AvatarStorage
}

// AuthService orchestrates remote and local authentication.
//
// Each call is independent: the remote service is tried first; an
// authoritative rejection is returned as *remote.DomainError, while an
// unavailable service sends the call to the local store. Results are tagged
// with the origin that served them.
type AuthService struct {
	remote   Remote
	local    LocalStore
	sessions *identity.SessionHolder
	log      logging.Logger
	metrics  metrics.Recorder
	now      func() time.Time
	loc      *time.Location
	timeout  time.Duration
}

type Option func(*AuthService)

func WithLogger(l logging.Logger) Option {
	return func(s *AuthService) { s.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *AuthService) { s.metrics = r }
}

// WithSessionHolder shares the remote session with other components, e.g.
// the Firestore token source.
func WithSessionHolder(h *identity.SessionHolder) Option {
	return func(s *AuthService) { s.sessions = h }
}

// WithLocation sets the zone birthTime is derived in.
func WithLocation(loc *time.Location) Option {
	return func(s *AuthService) { s.loc = loc }
}

// WithClock overrides the clock used to check session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithRemoteTimeout bounds every remote attempt. A remote call that runs out
// of time counts as unavailable and falls back. Zero means no bound.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *AuthService) { s.timeout = d }
}

// NewAuthService constructs an AuthService over the given stores.
func NewAuthService(local LocalStore, r Remote, opts ...Option) *AuthService {
	s := &AuthService{
		remote:   r,
		local:    local,
		sessions: &identity.SessionHolder{},
		log:      logging.Nop(),
		metrics:  metrics.Nop(),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RemoteConfigured reports whether a remote identity provider is wired in.
func (s *AuthService) RemoteConfigured() bool {
	return s.remote.Identity != nil
}

// Session returns the current remote session, or nil.
func (s *AuthService) Session() *identity.Session {
	return s.sessions.Get()
}

// CurrentAccount returns the signed-in account: the live remote session when
// there is one, otherwise the local session. The payload is nil when nobody
// is signed in.
func (s *AuthService) CurrentAccount(ctx context.Context) (Result[*models.Account], error) {
	if sess := s.remoteSession(ctx); sess != nil {
		return Result[*models.Account]{
			Origin:  models.OriginRemote,
			Payload: &models.Account{ID: sess.UID, Email: sess.Email},
		}, nil
	}
	u, err := s.local.CurrentUser(ctx)
	if err != nil {
		return Result[*models.Account]{}, err
	}
	if u == nil {
		return Result[*models.Account]{Origin: models.OriginLocal}, nil
	}
	return Result[*models.Account]{Origin: models.OriginLocal, Payload: u.Account()}, nil
}

// remoteSession returns the session profile calls may use remotely.
func (s *AuthService) remoteSession(ctx context.Context) *identity.Session {
	if s.remote.Identity == nil {
		return nil
	}
	sess := s.sessions.Get()
	if sess == nil {
		return nil
	}
	if sess.Expired(s.now()) {
		s.log.Debug(ctx, "remote session expired", "uid", sess.UID)
		return nil
	}
	return sess
}

// attempt runs remoteFn, then localFn when remoteFn is nil or reports the
// remote service unavailable.
func attempt[T any](ctx context.Context, s *AuthService, op string,
	remoteFn, localFn func(context.Context) (T, error)) (Result[T], error) {

	if remoteFn != nil {
		v, err := callRemote(ctx, s.timeout, remoteFn)
		if err == nil {
			s.metrics.Operation(op, string(models.OriginRemote), metrics.OutcomeSuccess)
			return Result[T]{Origin: models.OriginRemote, Payload: v}, nil
		}
		if !remote.IsUnavailable(err) {
			s.metrics.Operation(op, string(models.OriginRemote), metrics.OutcomeError)
			return Result[T]{}, remote.AsDomainError(err)
		}
		s.log.Info(ctx, "remote unavailable, using local store", "operation", op, "error", err)
		s.metrics.Fallback(op)
	}

	if localFn == nil {
		s.metrics.Operation(op, string(models.OriginLocal), metrics.OutcomeError)
		return Result[T]{}, ErrRemoteRequired
	}

	v, err := localFn(ctx)
	if err != nil {
		s.metrics.Operation(op, string(models.OriginLocal), metrics.OutcomeError)
		return Result[T]{}, err
	}
	s.metrics.Operation(op, string(models.OriginLocal), metrics.OutcomeSuccess)
	return Result[T]{Origin: models.OriginLocal, Payload: v}, nil
}

func callRemote[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// SignUp creates an account. Remotely the profile document is written after
// the account; a failed profile write is logged and the account kept.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (Result[*models.Account], error) {
	email := models.NormalizeEmail(req.Email)

	var remoteFn func(context.Context) (*models.Account, error)
	if s.remote.Identity != nil {
		remoteFn = func(ctx context.Context) (*models.Account, error) {
			sess, err := s.remote.Identity.SignUp(ctx, email, req.Password)
			if err != nil {
				return nil, err
			}
			s.sessions.Set(sess)
			s.dropOtherLocalSession(ctx, sess.Email)

			p := s.signUpProfile(email, req.SignUpFields)
			s.createRemoteProfile(ctx, sess.UID, p, req.BirthDate)

			return &models.Account{
				ID:        sess.UID,
				Email:     sess.Email,
				FullName:  p.FullName,
				Phone:     p.Phone,
				BirthDate: p.BirthDate,
				BirthTime: p.BirthTime,
				Plan:      p.Plan,
			}, nil
		}
	}

	return attempt(ctx, s, OpSignUp, remoteFn, func(ctx context.Context) (*models.Account, error) {
		u, err := s.local.CreateUser(ctx, email, req.Password, req.SignUpFields)
		if err != nil {
			return nil, err
		}
		s.sessions.Clear()
		return u.Account(), nil
	})
}

func (s *AuthService) signUpProfile(email string, f models.SignUpFields) models.Profile {
	p := models.Profile{
		FullName: f.FullName,
		Email:    email,
		Phone:    f.Phone,
		Plan:     models.PlanOrDefault(f.Plan),
	}
	if f.BirthDate != nil {
		p.BirthDate = models.FormatISO(*f.BirthDate)
		p.BirthTime = f.BirthDate.In(s.loc).Format("15:04")
	}
	return p
}

func (s *AuthService) createRemoteProfile(ctx context.Context, uid string, p models.Profile, birth *time.Time) {
	if s.remote.Profiles == nil {
		return
	}
	if err := s.remote.Profiles.Create(ctx, uid, p, birth); err != nil {
		s.log.Warn(ctx, "profile write after sign up failed", "uid", uid, "error", err)
	}
}

// SignIn authenticates with e-mail and password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (Result[*models.Account], error) {
	email = models.NormalizeEmail(email)

	var remoteFn func(context.Context) (*models.Account, error)
	if s.remote.Identity != nil {
		remoteFn = func(ctx context.Context) (*models.Account, error) {
			sess, err := s.remote.Identity.SignIn(ctx, email, password)
			if err != nil {
				return nil, err
			}
			s.sessions.Set(sess)
			s.dropOtherLocalSession(ctx, sess.Email)
			return &models.Account{ID: sess.UID, Email: sess.Email}, nil
		}
	}

	return attempt(ctx, s, OpSignIn, remoteFn, func(ctx context.Context) (*models.Account, error) {
		u, err := s.local.Authenticate(ctx, email, password)
		if err != nil {
			return nil, err
		}
		s.sessions.Clear()
		return u.Account(), nil
	})
}

// dropOtherLocalSession signs the local store out when its current account
// belongs to an e-mail other than the one just authenticated remotely, so a
// later fallback cannot serve another user's profile.
func (s *AuthService) dropOtherLocalSession(ctx context.Context, email string) {
	u, err := s.local.CurrentUser(ctx)
	if err != nil || u == nil || u.Email == models.NormalizeEmail(email) {
		return
	}
	if err := s.local.SignOut(ctx); err != nil {
		s.log.Warn(ctx, "unable to clear local session", "error", err)
	}
}

// RequestPasswordReset starts a password reset. Remotely the provider
// e-mails a reset link; locally a temporary password is issued and returned.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (Result[PasswordReset], error) {
	email = models.NormalizeEmail(email)

	var remoteFn func(context.Context) (PasswordReset, error)
	if s.remote.Identity != nil {
		remoteFn = func(ctx context.Context) (PasswordReset, error) {
			return PasswordReset{}, s.remote.Identity.SendPasswordReset(ctx, email)
		}
	}

	return attempt(ctx, s, OpPasswordReset, remoteFn, func(ctx context.Context) (PasswordReset, error) {
		temp, err := s.local.RequestPasswordReset(ctx, email)
		if err != nil {
			return PasswordReset{}, err
		}
		return PasswordReset{TemporaryPassword: temp}, nil
	})
}

// FetchProfile returns the profile of the signed-in account. A remote account
// without a profile document yields an empty profile.
func (s *AuthService) FetchProfile(ctx context.Context) (Result[models.Profile], error) {
	var remoteFn func(context.Context) (models.Profile, error)
	if sess := s.remoteSession(ctx); sess != nil && s.remote.Profiles != nil {
		remoteFn = func(ctx context.Context) (models.Profile, error) {
			p, err := s.remote.Profiles.Get(ctx, sess.UID)
			if errors.Is(err, profiles.ErrNotFound) {
				return models.Profile{}, nil
			}
			return p, err
		}
	}

	return attempt(ctx, s, OpFetchProfile, remoteFn, func(ctx context.Context) (models.Profile, error) {
		u, err := s.local.CurrentUser(ctx)
		if err != nil {
			return models.Profile{}, err
		}
		if u == nil {
			return models.Profile{}, localauth.ErrNoActiveSession
		}
		return u.Profile(), nil
	})
}

// UpdateProfile merges upd into the profile of the signed-in account and
// echoes it back.
func (s *AuthService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (Result[models.ProfileUpdate], error) {
	var remoteFn func(context.Context) (models.ProfileUpdate, error)
	if sess := s.remoteSession(ctx); sess != nil && s.remote.Profiles != nil {
		remoteFn = func(ctx context.Context) (models.ProfileUpdate, error) {
			return upd, s.remote.Profiles.Update(ctx, sess.UID, upd)
		}
	}

	return attempt(ctx, s, OpUpdateProfile, remoteFn, func(ctx context.Context) (models.ProfileUpdate, error) {
		if _, err := s.local.UpdateCurrentUser(ctx, upd); err != nil {
			return models.ProfileUpdate{}, err
		}
		return upd, nil
	})
}

// UploadAvatar stores a new profile photo and records its URL in the remote
// profile. There is no local equivalent.
func (s *AuthService) UploadAvatar(ctx context.Context, contentType string, data []byte) (Result[string], error) {
	sess := s.remoteSession(ctx)
	if sess == nil || s.remote.Avatars == nil {
		s.metrics.Operation(OpUploadAvatar, string(models.OriginLocal), metrics.OutcomeError)
		return Result[string]{}, ErrRemoteRequired
	}

	return attempt(ctx, s, OpUploadAvatar, func(ctx context.Context) (string, error) {
		url, err := s.remote.Avatars.Upload(ctx, sess.UID, contentType, data)
		if err != nil {
			return "", err
		}
		if s.remote.Profiles != nil {
			if err := s.remote.Profiles.Update(ctx, sess.UID, models.ProfileUpdate{PhotoURL: &url}); err != nil {
				return "", err
			}
		}
		return url, nil
	}, nil)
}

// SignOut ends the remote session, if any, and the local one.
func (s *AuthService) SignOut(ctx context.Context) (Result[struct{}], error) {
	origin := models.OriginLocal
	if s.sessions.Get() != nil {
		origin = models.OriginRemote
		s.sessions.Clear()
	}

	if err := s.local.SignOut(ctx); err != nil {
		s.metrics.Operation(OpSignOut, string(origin), metrics.OutcomeError)
		return Result[struct{}]{}, err
	}
	s.metrics.Operation(OpSignOut, string(origin), metrics.OutcomeSuccess)
	return Result[struct{}]{Origin: origin}, nil
}

// ResetLocalState wipes every local account and session.
func (s *AuthService) ResetLocalState(ctx context.Context) error {
	if err := s.local.ResetAll(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "local state reset")
	return nil
}
