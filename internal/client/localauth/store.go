// Package localauth implements the on-device credential store used when the
// remote identity provider cannot be reached.
//
// The store keeps two items in a kv.Repository: the registry of local accounts
// (a JSON array under UsersKey) and the id of the signed-in account under
// SessionKey. Writes are best effort: once a result has been computed it is
// returned even if persisting it fails, and the failure is logged. A registry
// that cannot be read fails every operation that would write it back.
package localauth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eden/internal/client/models"
	"github.com/dmitrijs2005/eden/internal/client/repositories/kv"
	"github.com/dmitrijs2005/eden/internal/cryptox"
	"github.com/dmitrijs2005/eden/internal/logging"
	"github.com/google/uuid"
)

const (
	UsersKey   = "@eden-app/local-users"
	SessionKey = "@eden-app/current-user-id"

	// IDPrefix marks ids of accounts that only exist on this device.
	IDPrefix = "local-"
)

// Store is the local credential store. It is safe for concurrent use; every
// load-mutate-persist sequence holds a store-wide lock.
type Store struct {
	mu   sync.Mutex
	repo kv.Repository
	log  logging.Logger

	now          func() time.Time
	newID        func() string
	loc          *time.Location
	tempPassword func() (string, error)
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how account ids are generated.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// WithLocation sets the zone birthTime is derived in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithPasswordGenerator overrides the temporary password generator.
func WithPasswordGenerator(f func() (string, error)) Option {
	return func(s *Store) { s.tempPassword = f }
}

func NewStore(repo kv.Repository, opts ...Option) *Store {
	s := &Store{
		repo:         repo,
		log:          logging.Nop(),
		now:          time.Now,
		newID:        func() string { return IDPrefix + uuid.NewString() },
		loc:          time.Local,
		tempPassword: cryptox.TemporaryPassword,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateUser registers a new local account and signs it in.
func (s *Store) CreateUser(ctx context.Context, email, password string, fields models.SignUpFields) (*models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	if indexByEmail(users, email) >= 0 {
		return nil, ErrDuplicateEmail
	}

	u := models.LocalUser{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: cryptox.HashPassword(password),
		FullName:     strings.TrimSpace(fields.FullName),
		Phone:        strings.TrimSpace(fields.Phone),
		Plan:         models.PlanOrDefault(fields.Plan),
		CreatedAt:    models.FormatISO(s.now()),
	}
	if fields.BirthDate != nil {
		iso := models.FormatISO(*fields.BirthDate)
		u.BirthDate = &iso
		u.BirthTime = fields.BirthDate.In(s.loc).Format("15:04")
	}

	users = append(users, u)
	s.persistUsers(ctx, users)
	s.setSession(ctx, u.ID)

	return &u, nil
}

// FindByEmail returns the account registered under email, or nil when there is
// none.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.loadUsers(ctx)
	i := indexByEmail(users, models.NormalizeEmail(email))
	if i < 0 {
		return nil, nil
	}
	return &users[i], nil
}

// Authenticate checks the credentials and makes the account current.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByEmail(users, models.NormalizeEmail(email))
	if i < 0 || !cryptox.VerifyPassword(users[i].PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	s.setSession(ctx, users[i].ID)
	return &users[i], nil
}

// CurrentUser returns the signed-in account. It returns nil when nobody is
// signed in or the session points at an account that no longer exists.
func (s *Store) CurrentUser(ctx context.Context) (*models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.loadUsers(ctx)
	i := s.currentIndex(ctx, users)
	if i < 0 {
		return nil, nil
	}
	return &users[i], nil
}

// UpdateCurrentUser merges the fields set in upd into the signed-in account.
func (s *Store) UpdateCurrentUser(ctx context.Context, upd models.ProfileUpdate) (*models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := s.currentIndex(ctx, users)
	if i < 0 {
		return nil, ErrNoActiveSession
	}

	applyUpdate(&users[i], upd)
	s.persistUsers(ctx, users)

	u := users[i]
	return &u, nil
}

// RequestPasswordReset replaces the password of the account registered under
// email with a random temporary one and returns it in plain text.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readUsers(ctx)
	if err != nil {
		return "", err
	}
	i := indexByEmail(users, models.NormalizeEmail(email))
	if i < 0 {
		return "", ErrUserNotFound
	}

	password, err := s.tempPassword()
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}

	users[i].PasswordHash = cryptox.HashPassword(password)
	s.persistUsers(ctx, users)

	return password, nil
}

// SignOut forgets the current session. The registry is kept.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.RemoveItem(ctx, SessionKey); err != nil {
		s.log.Warn(ctx, "unable to clear local session", "error", err)
	}
	return nil
}

// ResetAll removes every local account together with the session.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.RemoveItems(ctx, UsersKey, SessionKey); err != nil {
		return fmt.Errorf("reset local state: %w", err)
	}
	return nil
}

// Users returns the registry in insertion order.
func (s *Store) Users(ctx context.Context) ([]models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readUsers(ctx)
}

func applyUpdate(u *models.LocalUser, upd models.ProfileUpdate) {
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.BirthDate != nil {
		if iso, ok := upd.BirthDate.ISO(); ok {
			u.BirthDate = &iso
		} else {
			u.BirthDate = nil
		}
	}
	if upd.BirthTime != nil {
		u.BirthTime = *upd.BirthTime
	}
	if upd.Plan != nil {
		u.Plan = *upd.Plan
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
}

func indexByEmail(users []models.LocalUser, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

func (s *Store) currentIndex(ctx context.Context, users []models.LocalUser) int {
	id, ok, err := s.repo.GetItem(ctx, SessionKey)
	if err != nil {
		s.log.Warn(ctx, "unable to read local session", "error", err)
		return -1
	}
	if !ok || id == "" {
		return -1
	}
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

// loadUsers reads the registry for lookups. Unreadable or malformed data
// counts as an empty registry.
func (s *Store) loadUsers(ctx context.Context) []models.LocalUser {
	users, err := s.readUsers(ctx)
	if err != nil {
		s.log.Warn(ctx, "unable to load local users", "error", err)
		return nil
	}
	return users
}

// readUsers reads the registry. A storage failure is returned; malformed data
// is logged and counts as an empty registry.
func (s *Store) readUsers(ctx context.Context) ([]models.LocalUser, error) {
	raw, ok, err := s.repo.GetItem(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("load local users: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var users []models.LocalUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		s.log.Warn(ctx, "failed to parse local users list", "error", err)
		return nil, nil
	}
	return users, nil
}

func (s *Store) persistUsers(ctx context.Context, users []models.LocalUser) {
	if users == nil {
		users = []models.LocalUser{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		s.log.Warn(ctx, "unable to encode local users", "error", err)
		return
	}
	if err := s.repo.SetItem(ctx, UsersKey, string(data)); err != nil {
		s.log.Warn(ctx, "unable to persist local users", "error", err)
	}
}

func (s *Store) setSession(ctx context.Context, id string) {
	if err := s.repo.SetItem(ctx, SessionKey, id); err != nil {
		s.log.Warn(ctx, "unable to persist local session", "error", err, "user_id", id)
	}
}
