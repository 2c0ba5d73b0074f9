package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandString_AlphabetAndLength(t *testing.T) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	for _, n := range []int{1, 10, 200} {
		s, err := RandString(n, alphabet)
		require.NoError(t, err)
		require.Len(t, s, n)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestRandString_NonPositiveLength(t *testing.T) {
	s, err := RandString(0, "ab")
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = RandString(-3, "ab")
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}
