package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHashes are compared against when the user does not exist, so a failed
// login costs the same whether or not the username is known. One hash is
// kept per bcrypt cost, generated on first use.
var (
	dummyMu     sync.Mutex
	dummyHashes = map[int][]byte{}
)

func dummyHash(cost int) []byte {
	dummyMu.Lock()
	defer dummyMu.Unlock()

	if h, ok := dummyHashes[cost]; ok {
		return h
	}
	h, err := bcrypt.GenerateFromPassword([]byte("nutritracker-dummy-password"), cost)
	if err != nil {
		h, _ = bcrypt.GenerateFromPassword([]byte("nutritracker-dummy-password"), bcrypt.DefaultCost)
	}
	dummyHashes[cost] = h
	return h
}

// HashPassword returns the bcrypt hash of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash. Malformed hashes
// count as a mismatch.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckDummyPassword burns one bcrypt comparison at cost, the cost real
// hashes are made with, and always reports false.
func CheckDummyPassword(password string, cost int) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash(cost), []byte(password))
	return false
}
