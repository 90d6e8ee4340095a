package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"contentpilot/internal/config"
	"contentpilot/internal/domain"
)

var httpURL = regexp.MustCompile(`^https?://`)

// requireOwner rejects calls made without an authenticated owner.
func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: missing owner", domain.ErrUnauthorized)
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

// cleanList trims entries, drops blanks and never returns nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// trimPtr trims a pointer value and turns blank strings into nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// containsFold reports whether any field contains query, case-insensitively.
func containsFold(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// listRules bounds a free-text list such as goals or target audiences.
func listRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(0, config.MaxListItems),
		validation.Each(validation.Length(1, config.MaxListItemLength)),
	}
}

// referenceError turns a missing referenced record into a field error.
func referenceError(err error, field, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.FieldError(field, message)
	}
	return err
}
