package accservice

import (
	"slices"
	"strings"
	"unicode/utf8"

	"account-service/internal/domain"
	"account-service/internal/xerrors"
)

// normalizeName trims and bounds-checks a display name. Lengths count
// characters, not bytes.
func normalizeName(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if utf8.RuneCountInString(trimmed) < 2 {
		return "", xerrors.Validation("Name must be at least 2 characters long")
	}
	if utf8.RuneCountInString(trimmed) > 100 {
		return "", xerrors.Validation("Name must be less than 100 characters")
	}
	return trimmed, nil
}

// normalizeBio trims a bio; blank normalizes to null (nil).
func normalizeBio(o domain.Optional[string]) (*string, error) {
	if o.Null {
		return nil, nil
	}
	trimmed := strings.TrimSpace(o.Value)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > 1000 {
		return nil, xerrors.Validation("Bio must be less than 1000 characters")
	}
	return &trimmed, nil
}

// validateEnum passes nulls through untouched and rejects any non-null
// value outside the allowed set.
func validateEnum(o domain.Optional[string], allowed []string, field string) (*string, error) {
	if o.Null || o.Value == "" {
		return nil, nil
	}
	if !slices.Contains(allowed, o.Value) {
		return nil, xerrors.Validation("Invalid " + field + " value")
	}
	v := o.Value
	return &v, nil
}
