package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassify_Table(t *testing.T) {
	unavailable := Class{Kind: Unavailable}
	domain := func(k DomainKind) Class { return Class{Kind: Domain, Domain: k} }

	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"configuration not found", &Error{Code: CodeConfigurationNotFound}, unavailable},
		{"app deleted", &Error{Code: CodeAppDeleted}, unavailable},
		{"network request failed", &Error{Code: CodeNetworkRequestFailed}, unavailable},
		{"message configuration_not_found", &Error{Code: CodeInternal, Message: "CONFIGURATION_NOT_FOUND"}, unavailable},
		{"message api not used", &Error{Message: "Identity Toolkit API has not been used in project 123"}, unavailable},
		{"plain error with api message", errors.New("API has not been used before"), unavailable},
		{"not configured", ErrNotConfigured, unavailable},
		{"wrapped not configured", fmt.Errorf("signup: %w", ErrNotConfigured), unavailable},
		{"deadline", context.DeadlineExceeded, unavailable},
		{"url error", &url.Error{Op: "Post", URL: "https://x", Err: errors.New("connection refused")}, unavailable},
		{"net error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, unavailable},
		{"http 503", &googleapi.Error{Code: 503, Message: "The service is currently unavailable."}, unavailable},
		{"wrapped http 504", fmt.Errorf("firestore get users/u: %w", &googleapi.Error{Code: 504}), unavailable},
		{"email in use", &Error{Code: CodeEmailAlreadyInUse}, domain(EmailInUse)},
		{"invalid email", &Error{Code: CodeInvalidEmail}, domain(InvalidEmail)},
		{"weak password", &Error{Code: CodeWeakPassword}, domain(WeakPassword)},
		{"missing password", &Error{Code: CodeMissingPassword}, domain(MissingPassword)},
		{"operation not allowed", &Error{Code: CodeOperationNotAllowed}, domain(OperationNotAllowed)},
		{"wrapped email in use", fmt.Errorf("signup: %w", &Error{Code: CodeEmailAlreadyInUse}), domain(EmailInUse)},
		{"invalid credential", &Error{Code: CodeInvalidCredential}, domain(Unknown)},
		{"http 403", &googleapi.Error{Code: 403, Message: "Missing or insufficient permissions."}, domain(Unknown)},
		{"cancelled", context.Canceled, domain(Unknown)},
		{"cancelled url error", &url.Error{Op: "Get", URL: "https://x", Err: context.Canceled}, domain(Unknown)},
		{"anything else", errors.New("boom"), domain(Unknown)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
			assert.Equal(t, tt.want.Kind == Unavailable, IsUnavailable(tt.err))
		})
	}
}

func TestIsUnavailable_Nil(t *testing.T) {
	assert.False(t, IsUnavailable(nil))
}

func TestAsDomainError_Messages(t *testing.T) {
	tests := []struct {
		code string
		kind DomainKind
		msg  string
	}{
		{CodeEmailAlreadyInUse, EmailInUse, "Já existe uma conta com esse e-mail."},
		{CodeInvalidEmail, InvalidEmail, "O endereço de e-mail não é válido."},
		{CodeWeakPassword, WeakPassword, "A senha deve ter pelo menos 6 caracteres."},
		{CodeMissingPassword, MissingPassword, "Informe uma senha."},
		{CodeOperationNotAllowed, OperationNotAllowed, "O método de autenticação está desabilitado."},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			src := &Error{Code: tt.code, Message: "RAW"}
			d := AsDomainError(src)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.msg, d.Error())
			assert.ErrorIs(t, d, src)
		})
	}
}

func TestAsDomainError_UnknownKeepsProviderMessage(t *testing.T) {
	d := AsDomainError(&Error{Code: CodeInvalidCredential, Message: "INVALID_PASSWORD"})
	assert.Equal(t, Unknown, d.Kind)
	assert.Equal(t, "INVALID_PASSWORD", d.Message)

	d = AsDomainError(errors.New("boom"))
	assert.Equal(t, "boom", d.Message)
}

func TestAsDomainError_PassesThroughExisting(t *testing.T) {
	orig := &DomainError{Kind: WeakPassword, Message: "x"}
	got := AsDomainError(fmt.Errorf("wrap: %w", orig))
	require.Same(t, orig, got)
}

func TestError_String(t *testing.T) {
	assert.Equal(t, "auth/x: y", (&Error{Code: "auth/x", Message: "y"}).Error())
	assert.Equal(t, "auth/x", (&Error{Code: "auth/x"}).Error())
	assert.Equal(t, "y", (&Error{Message: "y"}).Error())
	assert.Equal(t, "inner", (&Error{Err: errors.New("inner")}).Error())
	assert.Equal(t, "remote error", (&Error{}).Error())
}

func TestDomainKind_String(t *testing.T) {
	assert.Equal(t, "email-in-use", EmailInUse.String())
	assert.Equal(t, "unknown", Unknown.String())
}
