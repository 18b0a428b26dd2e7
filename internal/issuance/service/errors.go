package service

import (
	"errors"

	"touristid/internal/sentinel"
	dErrors "touristid/pkg/domain-errors"
)

// translateLookupError maps store sentinels to domain errors exactly once.
func translateLookupError(err error, notFoundMsg, internalMsg string) error {
	var domainErr *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, notFoundMsg)
	case errors.As(err, &domainErr):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
	}
}
