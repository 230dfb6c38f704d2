package errors

import (
	"strings"
	"unicode"
)

// maxElementID bounds element identifiers read from scene files and requests.
const maxElementID = 128

// ValidateElementID checks an overlay element identifier from a scene file or
// an HTTP request. Identifiers must be non-empty, printable and free of
// whitespace so they can be used in URLs and log fields unquoted.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidScene, "element id cannot be empty")
	}
	if len(id) > maxElementID {
		return New(ErrCodeInvalidScene, "element id too long (max %d characters)", maxElementID)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidScene, "element id %q contains whitespace or control characters", id)
		}
	}
	if strings.ContainsAny(id, "/?#") {
		return New(ErrCodeInvalidScene, "element id %q contains reserved characters", id)
	}
	return nil
}
