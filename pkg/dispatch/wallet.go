package dispatch

import (
	"errors"

	"github.com/emiliancristea/xeno-ai/pkg/audit"
)

// ErrEmptyToken is returned when a wallet is created without a user token.
var ErrEmptyToken = errors.New("empty user token")

// Wallet binds a dispatcher to a user identity. The token is opaque here;
// validating it against the identity service happens elsewhere. Only its
// hash ever leaves the process.
type Wallet struct {
	token string
}

// NewWallet wraps a user token. An empty token is rejected.
func NewWallet(token string) (*Wallet, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	return &Wallet{token: token}, nil
}

// TokenHash returns the SHA-256 hash and short prefix of the bound token,
// suitable for audit attribution.
func (w *Wallet) TokenHash() (hash, prefix string) {
	return audit.HashToken(w.token)
}
