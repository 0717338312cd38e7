package domain

import (
	"net/mail"
	"regexp"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a URL-safe slug: lowercase alphanumeric
// segments separated by single hyphens, at most 100 characters.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= 100 && slugPattern.MatchString(s)
}

// ValidEmail reports whether s is a syntactically valid address. This is
// a fast-fail convenience only; it accepts anything net/mail accepts.
func ValidEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
