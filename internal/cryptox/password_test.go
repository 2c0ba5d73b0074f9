package cryptox

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_KnownDigests(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HashPassword(tt.in))
	}
}

func TestHashPassword_Deterministic(t *testing.T) {
	assert.Equal(t, HashPassword("secret-password"), HashPassword("secret-password"))
	assert.NotEqual(t, HashPassword("secret-password"), HashPassword("secret-passwore"))
	assert.Len(t, HashPassword("x"), 64)
}

func TestVerifyPassword(t *testing.T) {
	h := HashPassword("hunter2")

	assert.True(t, VerifyPassword(h, "hunter2"))
	assert.False(t, VerifyPassword(h, "hunter3"))
	assert.False(t, VerifyPassword("", "hunter2"))
}

func TestTemporaryPassword_Format(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{10}$`)

	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		p, err := TemporaryPassword()
		require.NoError(t, err)
		require.Regexp(t, re, p)
		seen[p] = struct{}{}
	}
	// 20 draws from 36^10 should not collide
	assert.Len(t, seen, 20)
}
