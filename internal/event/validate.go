package event

import (
	"regexp"

	"github.com/duskhollow/engine/internal/platform/errors"
)

// idPattern is the required shape of an event identifier.
var idPattern = regexp.MustCompile(`^e_[a-z0-9]{8}$`)

// ValidIDFormat reports whether id matches the "e_" + 8 lowercase
// alphanumeric characters format.
func ValidIDFormat(id string) bool {
	return idPattern.MatchString(id)
}

// Validate checks the structural schema of an event: id format, a set
// timestamp, and a non-empty type. Payload contents are deliberately not
// inspected; they are type-specific and owned by the reducer.
//
// Validation runs before append so the log itself is never invalid.
func Validate(evt Event) error {
	if !ValidIDFormat(evt.ID) {
		return errors.WithMetadata(errors.CodeEventIDInvalid,
			"event id must match e_[a-z0-9]{8}",
			map[string]string{"id": evt.ID})
	}
	if evt.TS.IsZero() {
		return errors.WithMetadata(errors.CodeEventTimestampMissing,
			"event timestamp is required",
			map[string]string{"id": evt.ID})
	}
	if evt.Type == "" {
		return errors.WithMetadata(errors.CodeEventTypeMissing,
			"event type is required",
			map[string]string{"id": evt.ID})
	}
	return nil
}
