package portal

import "errors"

// ErrNotFound indicates a referenced branch, class, or document does
// not resolve.
var ErrNotFound = errors.New("not found")

// ValidationError reports a local required-field failure. No remote
// call is made when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
