package services

import (
	"errors"

	"github.com/dmitrijs2005/eden/internal/client/models"
)

// ErrRemoteRequired is returned by operations that have no local equivalent
// when the remote service cannot serve them.
var ErrRemoteRequired = errors.New("operation requires the remote service")

// Result is the outcome of an orchestrated operation, tagged with the store
// that served it.
type Result[T any] struct {
	Origin  models.Origin
	Payload T
}

// Local reports whether the on-device store served the result.
func (r Result[T]) Local() bool { return r.Origin == models.OriginLocal }

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	Email    string
	Password string
	models.SignUpFields
}

// PasswordReset is the payload of RequestPasswordReset. TemporaryPassword is
// set only when the reset was served locally; a remote reset sends an e-mail
// instead.
type PasswordReset struct {
	TemporaryPassword string
}
