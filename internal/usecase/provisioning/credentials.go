package provisioning

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	usernamePrefix   = "oceanuser"
	passwordLength   = 12
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"
)

// generateUsername returns the fixed prefix plus a random 4-digit suffix.
func generateUsername() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate username: %w", err)
	}
	return fmt.Sprintf("%s%04d", usernamePrefix, n.Int64()), nil
}

// generatePassword returns 12 characters drawn from a fixed
// alphanumeric+symbol set.
func generatePassword() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := 0; i < passwordLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		sb.WriteByte(passwordAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// generateHostname builds a slug from the product name and memory tier plus
// a random suffix, e.g. "ocean-linux-4gb-a3f9".
func generateHostname(productName, memoryTier string) (string, error) {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate hostname suffix: %w", err)
	}

	parts := []string{slugify(productName)}
	if tier := slugify(memoryTier); tier != "" {
		parts = append(parts, tier)
	}
	parts = append(parts, fmt.Sprintf("%x", suffix))
	return strings.Join(parts, "-"), nil
}

// slugify lowercases and keeps only [a-z0-9-], collapsing everything else
// into single hyphens.
func slugify(s string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
