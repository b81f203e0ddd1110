package layers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// identifierLength is the number of characters in a layer identifier token.
const identifierLength = 8

// maxSuffix bounds the .NN search; a stack with this many same-named layers
// is already broken.
const maxSuffix = 9999

// UniqueIdentifier returns a fixed-length opaque token not present in
// existing. Tokens are derived from random UUIDs and collision-checked.
func UniqueIdentifier(existing map[string]struct{}, length int) string {
	if length <= 0 {
		length = identifierLength
	}
	for {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")
		if length < len(token) {
			token = token[:length]
		}
		if _, taken := existing[token]; !taken {
			return token
		}
	}
}

// suffixedName returns base suffixed ".NN" with the first free two-digit
// number, starting at 01.
func suffixedName(base string, taken func(string) bool) string {
	for n := 1; n <= maxSuffix; n++ {
		candidate := fmt.Sprintf("%s.%02d", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
	return base
}
