package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/playdesk/support-desk/internal/domain"
	"github.com/playdesk/support-desk/internal/repository"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// notFoundOr turns repository.ErrNotFound into a NotFound domain error for resource.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return err
}

// ruleError classifies errors raised by domain entities.
func ruleError(err error, details map[string]any) error {
	switch {
	case errors.Is(err, domain.ErrTicketTitleRequired),
		errors.Is(err, domain.ErrTicketDescriptionRequired),
		errors.Is(err, domain.ErrReplyContentRequired):
		return apperrors.NewValidationError(err.Error(), details)
	default:
		return apperrors.NewBusinessRule(err, details)
	}
}

// fail converts err into a *DomainError and logs it with the operation context.
// Errors that are not already domain errors are treated as internal failures.
func fail(logger *zap.Logger, op string, err error, fields ...zap.Field) error {
	domainErr := apperrors.ToDomainError(err)
	fields = append(fields, zap.String("op", op), zap.String("code", domainErr.Code), zap.Error(err))
	if domainErr.HTTPStatus >= 500 {
		logger.Error("operation failed", fields...)
	} else {
		logger.Info("operation rejected", fields...)
	}
	return domainErr
}
