package room

import (
	"crypto/rand"
	"math/big"
)

// Room tokens are short base36 strings carried in share links. 8 chars of
// base36 give ~41 bits, collision-resistant at this scale; CreateRoom still
// retries on a duplicate insert.
const (
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenLength   = 8
)

// NewToken generates a random fixed-length base36 room token.
func NewToken() (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, tokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
