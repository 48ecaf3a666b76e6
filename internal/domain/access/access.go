// Package access decides who may open a problem set and in which mode.
package access

import (
	"fmt"
	"strings"
)

type SharingLevel string

const (
	SharingPrivate SharingLevel = "private"
	SharingLimited SharingLevel = "limited"
	SharingPublic  SharingLevel = "public"
)

func ParseSharingLevel(v string) (SharingLevel, error) {
	switch l := SharingLevel(v); l {
	case SharingPrivate, SharingLimited, SharingPublic:
		return l, nil
	case "":
		return SharingPrivate, nil
	}
	return "", fmt.Errorf("invalid sharing level %q: must be private, limited or public", v)
}

// User is the authenticated caller as resolved by the identity layer.
type User struct {
	ID    string
	Email string
}

// Decision is the outcome of Check. Callers must report a denied decision
// exactly like a missing resource.
type Decision struct {
	Allowed bool
	IsOwner bool
}

// Check grants owners read-write access and shared viewers read-only access.
func Check(ownerID string, level SharingLevel, sharedWith []string, user User) Decision {
	if user.ID == "" {
		return Decision{}
	}
	if user.ID == ownerID {
		return Decision{Allowed: true, IsOwner: true}
	}

	switch level {
	case SharingPublic:
		return Decision{Allowed: true}
	case SharingLimited:
		if emailListed(sharedWith, user.Email) {
			return Decision{Allowed: true}
		}
	}
	return Decision{}
}

// NormalizeEmail is the canonical form used for share-list comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailListed(list []string, email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	for _, e := range list {
		if NormalizeEmail(e) == email {
			return true
		}
	}
	return false
}
