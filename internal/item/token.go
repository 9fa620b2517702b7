package item

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TokenLength is the length of the code embedded in a printed QR label.
// 10 characters over a 64-symbol alphabet gives 60 bits of entropy, which
// keeps tokens short enough to type by hand while still unguessable.
const TokenLength = 10

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// NewToken returns a fresh random QR token.
func NewToken() (string, error) {
	token := make([]byte, TokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))

	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating token: %w", err)
		}
		token[i] = tokenAlphabet[n.Int64()]
	}

	return string(token), nil
}
