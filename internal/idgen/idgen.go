// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each record kind.
const (
	PrefixOrganization = "org-"
	PrefixCostCenter   = "cc-"
	PrefixUser         = "usr-"
	PrefixSession      = "sess-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// SessionLength is used for session IDs, which are bearer-like and get more entropy.
var SessionLength = 24

// Generate returns a new unique ID with the given prefix.
func Generate(prefix string) (string, error) {
	return generate(prefix, Length)
}

// Session returns a new session ID.
func Session() (string, error) {
	return generate(PrefixSession, SessionLength)
}

func generate(prefix string, n int) (string, error) {
	id, err := nanoid.Generate(Alphabet, n)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
