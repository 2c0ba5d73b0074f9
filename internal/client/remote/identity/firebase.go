package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/eden/internal/client/remote"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// FirebaseConfig holds what FirebaseBackend needs to reach the project.
type FirebaseConfig struct {
	APIKey string
	// Endpoint overrides the Identity Toolkit base URL (emulators, tests).
	Endpoint string
}

// FirebaseBackend implements Provider over the Identity Toolkit REST API.
type FirebaseBackend struct {
	rp  *identitytoolkit.RelyingpartyService
	now func() time.Time
}

// NewFirebaseBackend returns remote.ErrNotConfigured when cfg has no API key.
func NewFirebaseBackend(ctx context.Context, cfg FirebaseConfig) (*FirebaseBackend, error) {
	if cfg.APIKey == "" {
		return nil, remote.ErrNotConfigured
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit client: %w", err)
	}
	return &FirebaseBackend{rp: svc.Relyingparty, now: time.Now}, nil
}

func (b *FirebaseBackend) SignUp(ctx context.Context, email, password string) (*Session, error) {
	resp, err := b.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}

	return &Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt(resp.IdToken, resp.ExpiresIn, b.now()),
	}, nil
}

func (b *FirebaseBackend) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := b.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}

	return &Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt(resp.IdToken, resp.ExpiresIn, b.now()),
	}, nil
}

func (b *FirebaseBackend) SendPasswordReset(ctx context.Context, email string) error {
	_, err := b.rp.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return translateError(err)
	}
	return nil
}

// providerCodes maps Identity Toolkit error messages to provider codes.
var providerCodes = map[string]string{
	"EMAIL_EXISTS":                remote.CodeEmailAlreadyInUse,
	"INVALID_EMAIL":               remote.CodeInvalidEmail,
	"WEAK_PASSWORD":               remote.CodeWeakPassword,
	"MISSING_PASSWORD":            remote.CodeMissingPassword,
	"OPERATION_NOT_ALLOWED":       remote.CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     remote.CodeOperationNotAllowed,
	"INVALID_PASSWORD":            remote.CodeInvalidCredential,
	"INVALID_LOGIN_CREDENTIALS":   remote.CodeInvalidCredential,
	"EMAIL_NOT_FOUND":             remote.CodeUserNotFound,
	"USER_DISABLED":               remote.CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": remote.CodeTooManyRequests,
	"CONFIGURATION_NOT_FOUND":     remote.CodeConfigurationNotFound,
	"PROJECT_NOT_FOUND":           remote.CodeAppDeleted,
}

func translateError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		if errors.Is(err, context.Canceled) {
			return &remote.Error{Message: err.Error(), Err: err}
		}
		return &remote.Error{Code: remote.CodeNetworkRequestFailed, Message: err.Error(), Err: err}
	}

	// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
	key, _, _ := strings.Cut(gerr.Message, " : ")
	if code, ok := providerCodes[strings.TrimSpace(key)]; ok {
		return &remote.Error{Code: code, Message: gerr.Message, Err: err}
	}

	switch gerr.Code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &remote.Error{Code: remote.CodeNetworkRequestFailed, Message: gerr.Message, Err: err}
	}
	return &remote.Error{Code: remote.CodeInternal, Message: gerr.Message, Err: err}
}
