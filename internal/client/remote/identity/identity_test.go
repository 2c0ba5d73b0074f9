package identity

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/eden/internal/client/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	gotEmail string
	err      error
}

func (f *fakeBackend) SignUp(_ context.Context, email, _ string) (*Session, error) {
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return &Session{UID: "u1", Email: email}, nil
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return f.SignUp(ctx, email, password)
}

func (f *fakeBackend) SendPasswordReset(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}

func TestClient_NormalizesEmail(t *testing.T) {
	fb := &fakeBackend{}
	c := NewClient(fb, nil)
	ctx := context.Background()

	s, err := c.SignUp(ctx, "  Ana@Example.COM ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", s.Email)

	_, err = c.SignIn(ctx, "BIA@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bia@example.com", fb.gotEmail)

	require.NoError(t, c.SendPasswordReset(ctx, " Cai@Example.com"))
	assert.Equal(t, "cai@example.com", fb.gotEmail)
}

func TestClient_TranslatesForeignErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		code        string
		unavailable bool
	}{
		{"remote error kept", &remote.Error{Code: remote.CodeWeakPassword}, remote.CodeWeakPassword, false},
		{"transport", &url.Error{Op: "Post", URL: "x", Err: errors.New("refused")}, remote.CodeNetworkRequestFailed, true},
		{"not configured", remote.ErrNotConfigured, remote.CodeNetworkRequestFailed, true},
		{"cancelled", context.Canceled, "", false},
		{"other", errors.New("boom"), remote.CodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(&fakeBackend{err: tt.err}, nil)

			err := c.SendPasswordReset(context.Background(), "a@b.c")
			var rerr *remote.Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.code, rerr.Code)
			assert.Equal(t, tt.unavailable, remote.IsUnavailable(err))
		})
	}
}

func TestSessionHolder(t *testing.T) {
	var h SessionHolder
	assert.Nil(t, h.Get())
	assert.Equal(t, "", h.IDToken())

	h.Set(&Session{UID: "u", IDToken: "tok"})
	assert.Equal(t, "tok", h.IDToken())

	h.Clear()
	assert.Nil(t, h.Get())
}
