package id

import "github.com/google/uuid"

// GenerateID creates a unique random identifier for stored entities.
func GenerateID() string {
	return uuid.NewString()
}
