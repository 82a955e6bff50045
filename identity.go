package scenegraph

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

// MaxNameSuffix bounds the numeric suffix tried by Disambiguate (exclusive).
const MaxNameSuffix = 9999

var (
	illegalNameChars = regexp.MustCompile(`[^A-Za-z0-9_\[\]]`)
	trailingDigits   = regexp.MustCompile(`[0-9]+$`)
)

// NewIdentifier returns a random (version 4) UUID string.
func NewIdentifier() string {
	return uuid.NewString()
}

// Disambiguate rewrites name into one for which taken reports false.
// A name that is not taken is returned unchanged. Otherwise illegal
// characters are replaced with '_', a missing numeric suffix becomes "1",
// and the suffix is counted upward until a free name is found.
func Disambiguate(name string, taken func(string) bool) (string, error) {
	if !taken(name) {
		return name, nil
	}

	name = illegalNameChars.ReplaceAllString(name, "_")
	if !trailingDigits.MatchString(name) {
		name += "1"
	}
	if !taken(name) {
		return name, nil
	}

	loc := trailingDigits.FindStringIndex(name)
	prefix, digits := name[:loc[0]], name[loc[0]:]
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", fmt.Errorf("%w: suffix of %q out of range", ErrExhaustedNamespace, name)
	}

	for i := n + 1; i < MaxNameSuffix; i++ {
		candidate := prefix + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrExhaustedNamespace, prefix)
}
