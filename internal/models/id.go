package models

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// idPattern is the identifier shape the store accepts for canvas ids and
// image filenames: a short name with an optional extension. UUIDs match
// it as well. Anything with traversal characters is rejected before I/O.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}(\.[A-Za-z0-9]+)?$`)

// NewID returns a fresh universally unique element or canvas id.
func NewID() string { return uuid.NewString() }

// ValidateID checks a canvas id against the identifier-safety rules.
func ValidateID(id string) error {
	return validation.Validate(id,
		validation.Required,
		validation.Match(idPattern),
	)
}

// ValidateFilename checks an image filename against the same rules; the
// extension part is mandatory for files but idPattern keeps it optional so
// bare UUIDs stay accepted.
func ValidateFilename(name string) error {
	return ValidateID(name)
}
