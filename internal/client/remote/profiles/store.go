// Package profiles stores user profile documents in the remote document
// store, keyed by uid in the "users" collection.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eden/internal/client/models"
)

// Collection holds one profile document per uid.
const Collection = "users"

// ErrNotFound is returned by GetDocument when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Fields is the content of a document. Values are string, bool, int64,
// float64, time.Time or nil.
type Fields map[string]any

// DocumentStore is the remote document store.
type DocumentStore interface {
	// SetDocument creates or replaces the whole document.
	SetDocument(ctx context.Context, collection, id string, fields Fields) error
	GetDocument(ctx context.Context, collection, id string) (Fields, error)
	// UpdateDocument merges partial into the document, creating it if needed.
	UpdateDocument(ctx context.Context, collection, id string, partial Fields) error
}

// Store maps profiles to documents.
type Store struct {
	docs DocumentStore
	now  func() time.Time
}

func NewStore(docs DocumentStore) *Store {
	return &Store{docs: docs, now: time.Now}
}

// Create writes the initial profile document of a freshly created account.
func (s *Store) Create(ctx context.Context, uid string, p models.Profile, birthDate *time.Time) error {
	f := Fields{
		"fullName":  p.FullName,
		"email":     p.Email,
		"phone":     p.Phone,
		"birthDate": nil,
		"plan":      string(models.PlanOrDefault(p.Plan)),
		"createdAt": s.now().UTC(),
	}
	if birthDate != nil {
		f["birthDate"] = birthDate.UTC()
	}
	if p.BirthTime != "" {
		f["birthTime"] = p.BirthTime
	}

	if err := s.docs.SetDocument(ctx, Collection, uid, f); err != nil {
		return fmt.Errorf("create profile %s: %w", uid, err)
	}
	return nil
}

// Get loads the profile of uid. It returns ErrNotFound when the account has
// no profile document.
func (s *Store) Get(ctx context.Context, uid string) (models.Profile, error) {
	f, err := s.docs.GetDocument(ctx, Collection, uid)
	if err != nil {
		return models.Profile{}, fmt.Errorf("get profile %s: %w", uid, err)
	}

	return models.Profile{
		FullName:  stringField(f, "fullName"),
		Email:     stringField(f, "email"),
		Phone:     stringField(f, "phone"),
		BirthDate: stringField(f, "birthDate"),
		BirthTime: stringField(f, "birthTime"),
		Plan:      models.Plan(stringField(f, "plan")),
		PhotoURL:  stringField(f, "photoURL"),
	}, nil
}

// Update merges the fields set in upd into the profile of uid.
func (s *Store) Update(ctx context.Context, uid string, upd models.ProfileUpdate) error {
	f := Fields{"updatedAt": s.now().UTC()}
	if upd.FullName != nil {
		f["fullName"] = *upd.FullName
	}
	if upd.Phone != nil {
		f["phone"] = *upd.Phone
	}
	if upd.BirthDate != nil {
		switch {
		case upd.BirthDate.Time != nil:
			f["birthDate"] = upd.BirthDate.Time.UTC()
		case upd.BirthDate.Raw != "":
			f["birthDate"] = upd.BirthDate.Raw
		default:
			f["birthDate"] = nil
		}
	}
	if upd.BirthTime != nil {
		f["birthTime"] = *upd.BirthTime
	}
	if upd.Plan != nil {
		f["plan"] = string(*upd.Plan)
	}
	if upd.PhotoURL != nil {
		f["photoURL"] = *upd.PhotoURL
	}

	if err := s.docs.UpdateDocument(ctx, Collection, uid, f); err != nil {
		return fmt.Errorf("update profile %s: %w", uid, err)
	}
	return nil
}

// stringField renders a field as the string form used by models.Profile.
// Timestamps become ISO strings; missing and null fields are empty.
func stringField(f Fields, name string) string {
	switch v := f[name].(type) {
	case string:
		return v
	case time.Time:
		return models.FormatISO(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
