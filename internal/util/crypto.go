package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const tokenBytes = 32

// passwordChars excludes visually ambiguous characters (0/O, 1/I/l) so
// generated passwords survive human transcription.
const passwordChars = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const (
	passwordGroups    = 4
	passwordGroupSize = 4
)

// GenerateToken returns a 64-character hex session token.
func GenerateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GeneratePassword returns a human-shareable credential in dash-grouped
// blocks, e.g. "kT4m-Wc8p-nQ2r-Xd7f".
func GeneratePassword() (string, error) {
	groups := make([]string, passwordGroups)
	buf := make([]byte, passwordGroupSize)
	for g := 0; g < passwordGroups; g++ {
		for i := 0; i < passwordGroupSize; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
			if err != nil {
				return "", fmt.Errorf("read entropy: %w", err)
			}
			buf[i] = passwordChars[n.Int64()]
		}
		groups[g] = string(buf)
	}
	return strings.Join(groups, "-"), nil
}

// HashSecret normalizes a submitted secret (trim + lowercase) and returns
// its sha256 hex digest. Unsalted on purpose: the hash is the lookup key
// for a low-stakes beta gate, not a credential store.
func HashSecret(secret string) string {
	normalized := strings.ToLower(strings.TrimSpace(secret))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// HashToken hashes an opaque token without normalization.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func MaskCode(code string) string {
	if len(code) <= 4 {
		return "****"
	}
	return code[:4] + "-****"
}
