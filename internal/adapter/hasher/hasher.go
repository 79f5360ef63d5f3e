// Package hasher hashes account passwords with bcrypt.
package hasher

import "golang.org/x/crypto/bcrypt"

// Adapter satisfies account.Encrypter.
type Adapter struct {
	cost int
}

// New returns an Adapter using cost. Costs outside bcrypt's accepted range
// fall back to bcrypt.DefaultCost.
func New(cost int) Adapter {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Adapter{cost: cost}
}

// Encrypt hashes plaintext.
func (a Adapter) Encrypt(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), a.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
