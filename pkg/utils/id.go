package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// PINAlphabet matches what the mobile clients expect: uppercase letters and
// digits, no lowercase, no punctuation.
const PINAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePIN returns a crypto-random join code of the given length.
func GeneratePIN(length int) string {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(PINAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("pin generation: %v", err))
		}
		buf[i] = PINAlphabet[n.Int64()]
	}
	return string(buf)
}

// GenerateRequestID generates a unique request ID
func GenerateRequestID() string {
	timestamp := time.Now().UnixNano()
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", timestamp, hex.EncodeToString(b))
}

// GenerateLockValue returns a unique holder token for distributed locks.
func GenerateLockValue() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
