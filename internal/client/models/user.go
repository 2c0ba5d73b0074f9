// Package models defines the client-side data models of the Eden
// authentication core: locally stored fallback accounts, profiles and the
// origin tag attached to every result.
package models

import (
	"strings"
	"time"
)

// ISOLayout is the timestamp format persisted for birthDate and createdAt:
// UTC with millisecond precision, e.g. 2024-03-01T13:45:00.000Z.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// Plan is the subscription tier of an account.
type Plan string

const (
	PlanFree     Plan = "gratuito"
	PlanPremium  Plan = "premium"
	PlanMentored Plan = "mentorado"
	PlanMaster   Plan = "master"
)

// Valid reports whether p is one of the known plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPremium, PlanMentored, PlanMaster:
		return true
	}
	return false
}

// PlanOrDefault returns p, or PlanFree when p is empty.
func PlanOrDefault(p Plan) Plan {
	if p == "" {
		return PlanFree
	}
	return p
}

// LocalUser is an account kept in the on-device registry. It is created only
// when sign-up cannot reach the remote identity provider.
//
// The JSON names match the registry format written by the mobile app.
type LocalUser struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"passwordHash"`
	FullName     string  `json:"fullName"`
	Phone        string  `json:"phone"`
	BirthDate    *string `json:"birthDate"`
	BirthTime    string  `json:"birthTime"`
	Plan         Plan    `json:"plan"`
	PhotoURL     string  `json:"photoURL,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

// Account converts u into the credential-free view returned to callers.
func (u *LocalUser) Account() *Account {
	return &Account{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		BirthDate: derefString(u.BirthDate),
		BirthTime: u.BirthTime,
		Plan:      u.Plan,
		CreatedAt: u.CreatedAt,
	}
}

// Profile returns the profile fields of u.
func (u *LocalUser) Profile() Profile {
	return Profile{
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		BirthDate: derefString(u.BirthDate),
		BirthTime: u.BirthTime,
		Plan:      u.Plan,
		PhotoURL:  u.PhotoURL,
	}
}

// Account is an authenticated user as seen by the UI, independent of whether
// it was served by the remote provider or the local store.
type Account struct {
	ID        string
	Email     string
	FullName  string
	Phone     string
	BirthDate string
	BirthTime string
	Plan      Plan
	CreatedAt string
}

// NormalizeEmail trims surrounding whitespace and lowercases email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatISO renders t in ISOLayout, always in UTC.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// BirthTimeOf returns the HH:MM wall-clock time of an ISO timestamp in loc.
// Empty or unparsable input yields "".
func BirthTimeOf(iso string, loc *time.Location) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04")
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
