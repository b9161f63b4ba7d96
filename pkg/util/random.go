package util

import (
	"crypto/rand"
	"math/big"
)

const (
	resetCodeMin = 100000
	resetCodeMax = 999999
)

// GenerateResetCode generates a random 6-digit password reset code
func GenerateResetCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetCodeMax-resetCodeMin+1))
	if err != nil {
		return 0, err
	}
	return resetCodeMin + int(n.Int64()), nil
}
