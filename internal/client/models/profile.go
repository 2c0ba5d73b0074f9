package models

import "time"

// Origin tells which backing store served a result.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Profile holds the user-editable account fields.
type Profile struct {
	FullName  string
	Email     string
	Phone     string
	BirthDate string
	BirthTime string
	Plan      Plan
	PhotoURL  string
}

// SignUpFields are the optional profile fields captured by the sign-up form.
type SignUpFields struct {
	FullName  string
	Phone     string
	BirthDate *time.Time
	Plan      Plan
}

// ProfileUpdate is a partial profile change. Only non-nil fields are applied;
// everything else is left as it was.
type ProfileUpdate struct {
	FullName  *string
	Phone     *string
	BirthDate *BirthDate
	BirthTime *string
	Plan      *Plan
	PhotoURL  *string
}

// Empty reports whether u changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.Phone == nil && u.BirthDate == nil &&
		u.BirthTime == nil && u.Plan == nil && u.PhotoURL == nil
}

// BirthDate is a birth date given either as a time value or as an already
// formatted string. A zero BirthDate clears the stored date.
type BirthDate struct {
	Time *time.Time
	Raw  string
}

// BirthDateFromTime wraps a time value.
func BirthDateFromTime(t time.Time) *BirthDate {
	return &BirthDate{Time: &t}
}

// BirthDateFromString wraps a preformatted value.
func BirthDateFromString(s string) *BirthDate {
	return &BirthDate{Raw: s}
}

// ISO returns the value to persist: time values are normalized to ISOLayout,
// strings are kept verbatim. ok is false when the date is being cleared.
func (b BirthDate) ISO() (value string, ok bool) {
	if b.Time != nil {
		return FormatISO(*b.Time), true
	}
	if b.Raw != "" {
		return b.Raw, true
	}
	return "", false
}
