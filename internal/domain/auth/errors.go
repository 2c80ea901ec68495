package auth

import "gatepass-server-go/internal/platform/errors"

// IsConflict reports a duplicate-account failure.
func IsConflict(err error) bool {
	return errors.IsKind(err, errors.KindConflict)
}

// IsNotFound reports a missing-account failure.
func IsNotFound(err error) bool {
	return errors.IsKind(err, errors.KindNotFound)
}

// IsUnauthorized reports a credential or token failure.
func IsUnauthorized(err error) bool {
	return errors.IsKind(err, errors.KindAuth)
}
