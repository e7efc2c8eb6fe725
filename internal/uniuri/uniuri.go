package uniuri

import (
	"crypto/rand"

	pkgerrors "github.com/pkg/errors"
)

// TokenLen gives ~190 bits of entropy with the default alphabet.
const TokenLen = 32

// chars is the alphabet of generated strings.
const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// New returns a random string of TokenLen characters.
func New() (string, error) {
	return NewLen(TokenLen)
}

// NewLen returns a random string of length characters.
// Bytes at or above the largest multiple of the alphabet size are rejected to avoid modulo bias.
func NewLen(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	limit := 256 - 256%len(chars) //nolint:mnd
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+8) //nolint:mnd

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", pkgerrors.Wrap(err, "read random bytes")
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%len(chars)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
