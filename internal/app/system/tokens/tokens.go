// Package tokens generates unguessable alphanumeric tokens.
package tokens

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// InvitationLength is the length of invitation tokens.
const InvitationLength = 32

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns n characters drawn uniformly from [A-Za-z0-9] using crypto/rand.
func Generate(n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = alphabet[v.Int64()]
	}
	return string(b), nil
}

// Invitation returns a new invitation token.
func Invitation() (string, error) {
	return Generate(InvitationLength)
}
