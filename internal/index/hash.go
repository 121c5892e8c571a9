package index

import (
	"fmt"
	"regexp"
	"strings"
)

// HashLength is the length of a hex-encoded SHA-1 object id
const HashLength = 40

var hashRegex = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Hash is a content hash in the object store's format (lowercase hex SHA-1)
type Hash string

// IsHash reports whether s is formatted like an object store hash
func IsHash(s string) bool {
	return hashRegex.MatchString(s)
}

// ParseHash validates s and returns it as a Hash.
// Uppercase hex is accepted and normalized.
func ParseHash(s string) (Hash, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if !IsHash(normalized) {
		return "", fmt.Errorf("invalid hash %q: expected %d hex characters", s, HashLength)
	}
	return Hash(normalized), nil
}

// HashPtr returns a pointer to h, for optional hash fields
func HashPtr(h Hash) *Hash {
	return &h
}

func (h Hash) String() string {
	return string(h)
}

// Short returns the abbreviated form used in output
func (h Hash) Short() string {
	if len(h) > 7 {
		return string(h[:7])
	}
	return string(h)
}

// IsZero reports whether the hash is empty
func (h Hash) IsZero() bool {
	return h == ""
}
