// Package common provides small helpers shared by Eden packages: random
// string generation and wiping of sensitive buffers.
package common

import "crypto/rand"

// RandString returns a string of length n whose characters are drawn
// uniformly from alphabet. alphabet must be non-empty and at most 256 bytes.
func RandString(n int, alphabet string) (string, error) {
	if n <= 0 {
		return "", nil
	}

	// rejection sampling keeps the distribution uniform
	limit := 256 - 256%len(alphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// WipeByteArray overwrites b with zeros. Use it for passwords read from the
// terminal once they are no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
