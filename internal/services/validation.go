package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var walletAddressPattern = regexp.MustCompile(`^0x[a-f0-9]{40}$`)

// isEmailValid checks for a single @ and a dotted domain
func isEmailValid(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}

	domainParts := strings.Split(parts[1], ".")
	if len(domainParts) < 2 {
		return false
	}
	for _, p := range domainParts {
		if p == "" {
			return false
		}
	}
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeAddress lowercases a 0x address and reports whether it is well formed
func normalizeAddress(address string) (string, bool) {
	a := strings.ToLower(strings.TrimSpace(address))
	return a, walletAddressPattern.MatchString(a)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// validID reports whether id can name a stored record
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
