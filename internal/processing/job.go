package processing

import "github.com/google/uuid"

// NewJobID mints the correlation id for one upload. Ids are random v4
// UUIDs, so they are also safe to use as artifact file names.
func NewJobID() string {
	return uuid.NewString()
}

// ValidJobID reports whether id has the shape NewJobID produces.
func ValidJobID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
