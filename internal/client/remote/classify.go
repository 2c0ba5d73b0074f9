package remote

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind is the top-level outcome of Classify.
type Kind int

const (
	// Domain means the service answered and rejected the request.
	Domain Kind = iota
	// Unavailable means the service is missing, misconfigured or unreachable.
	Unavailable
)

// DomainKind narrows a Domain classification.
type DomainKind int

const (
	Unknown DomainKind = iota
	EmailInUse
	InvalidEmail
	WeakPassword
	MissingPassword
	OperationNotAllowed
)

func (k DomainKind) String() string {
	switch k {
	case EmailInUse:
		return "email-in-use"
	case InvalidEmail:
		return "invalid-email"
	case WeakPassword:
		return "weak-password"
	case MissingPassword:
		return "missing-password"
	case OperationNotAllowed:
		return "operation-not-allowed"
	}
	return "unknown"
}

// Class is the result of Classify. Domain is meaningful only when Kind is
// Domain.
type Class struct {
	Kind   Kind
	Domain DomainKind
}

const (
	CodeConfigurationNotFound = "auth/configuration-not-found"
	CodeAppDeleted            = "auth/app-deleted"
	CodeNetworkRequestFailed  = "auth/network-request-failed"
	CodeEmailAlreadyInUse     = "auth/email-already-in-use"
	CodeInvalidEmail          = "auth/invalid-email"
	CodeWeakPassword          = "auth/weak-password"
	CodeMissingPassword       = "auth/missing-password"
	CodeOperationNotAllowed   = "auth/operation-not-allowed"
	CodeInvalidCredential     = "auth/invalid-credential"
	CodeUserNotFound          = "auth/user-not-found"
	CodeUserDisabled          = "auth/user-disabled"
	CodeTooManyRequests       = "auth/too-many-requests"
	CodeInternal              = "auth/internal-error"
)

var unavailableCodes = map[string]bool{
	CodeConfigurationNotFound: true,
	CodeAppDeleted:            true,
	CodeNetworkRequestFailed:  true,
}

var unavailableMessages = []string{
	"configuration_not_found",
	"api has not been used",
}

var domainKinds = map[string]DomainKind{
	CodeEmailAlreadyInUse:   EmailInUse,
	CodeInvalidEmail:        InvalidEmail,
	CodeWeakPassword:        WeakPassword,
	CodeMissingPassword:     MissingPassword,
	CodeOperationNotAllowed: OperationNotAllowed,
}

var domainMessages = map[DomainKind]string{
	EmailInUse:          "Já existe uma conta com esse e-mail.",
	InvalidEmail:        "O endereço de e-mail não é válido.",
	WeakPassword:        "A senha deve ter pelo menos 6 caracteres.",
	MissingPassword:     "Informe uma senha.",
	OperationNotAllowed: "O método de autenticação está desabilitado.",
}

// Classify decides how a remote failure must be handled. A nil error is
// classified as Domain(Unknown) and is never Unavailable.
func Classify(err error) Class {
	if err == nil {
		return Class{Kind: Domain}
	}

	if errors.Is(err, ErrNotConfigured) || errors.Is(err, context.DeadlineExceeded) {
		return Class{Kind: Unavailable}
	}
	// Cancellation is terminal, not a reason to fall back.
	if errors.Is(err, context.Canceled) {
		return Class{Kind: Domain}
	}

	var rerr *Error
	if errors.As(err, &rerr) {
		if unavailableCodes[rerr.Code] || unavailableMessage(rerr.Message) {
			return Class{Kind: Unavailable}
		}
		if k, ok := domainKinds[rerr.Code]; ok {
			return Class{Kind: Domain, Domain: k}
		}
	}

	var derr *DomainError
	if errors.As(err, &derr) {
		return Class{Kind: Domain, Domain: derr.Kind}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return Class{Kind: Unavailable}
		}
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		return Class{Kind: Unavailable}
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return Class{Kind: Unavailable}
	}

	if unavailableMessage(err.Error()) {
		return Class{Kind: Unavailable}
	}

	return Class{Kind: Domain, Domain: Unknown}
}

// IsUnavailable reports whether err should send the caller to the local
// fallback.
func IsUnavailable(err error) bool {
	return err != nil && Classify(err).Kind == Unavailable
}

// AsDomainError converts a non-unavailable failure into a *DomainError. The
// five known kinds get their product message; anything else keeps the
// provider's message.
func AsDomainError(err error) *DomainError {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr
	}

	c := Classify(err)
	out := &DomainError{Kind: c.Domain, Err: err}

	var rerr *Error
	if errors.As(err, &rerr) {
		out.Code = rerr.Code
		out.Message = rerr.Message
	}
	if msg, ok := domainMessages[c.Domain]; ok {
		out.Message = msg
	}
	if out.Message == "" {
		out.Message = err.Error()
	}
	return out
}

func unavailableMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range unavailableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
