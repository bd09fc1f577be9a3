package audiostream

import "strings"

// flushErrors wraps errors that might occur when multiple sink calls
// fail during shutdown.
type flushErrors []error

func (e flushErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Unwrap allows to match any of the errors.
func (e flushErrors) Unwrap() []error {
	return e
}

// ret returns untyped nil if error is list is empty.
func (e flushErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
