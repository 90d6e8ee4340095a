package postgres

import (
	"fmt"

	"github.com/google/uuid"

	"contentpilot/internal/domain"
)

// checkID rejects ids that cannot exist in a uuid column so lookups with a
// malformed path value report not found instead of an encoding error.
func checkID(kind, id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
