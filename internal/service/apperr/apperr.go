package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Business rule reasons. Match with errors.Is on a returned BusinessRuleError.
var (
	ErrServiceInactive         = errors.New("service is not available")
	ErrDiscountNotValidNow     = errors.New("discount code is not valid at this time")
	ErrDiscountBelowMinimum    = errors.New("order amount below minimum for discount")
	ErrDiscountExhausted       = errors.New("discount code usage limit exceeded")
	ErrLoyaltyBalanceChanged   = errors.New("loyalty balance changed, please retry")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrTrackingNumberExhausted = errors.New("could not allocate a unique tracking number")
)

// ValidationError lists every malformed or missing field of a request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NotFoundError names a resource that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// BusinessRuleError is a request that is well formed but not allowed.
type BusinessRuleError struct {
	Reason error
	Detail string
}

func (e *BusinessRuleError) Error() string {
	if e.Detail != "" {
		return e.Reason.Error() + ": " + e.Detail
	}

	return e.Reason.Error()
}

func (e *BusinessRuleError) Unwrap() error {
	return e.Reason
}

// InfrastructureError wraps a data store or broker failure.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

func Validation(errs ...string) error {
	return &ValidationError{Errors: errs}
}

func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

func BusinessRule(reason error, detail string) error {
	return &BusinessRuleError{Reason: reason, Detail: detail}
}

// Infra wraps err as an InfrastructureError unless it already belongs to the taxonomy.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}

	return &InfrastructureError{Op: op, Err: err}
}

// IsClassified reports whether err carries one of the taxonomy types.
func IsClassified(err error) bool {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		businessErr   *BusinessRuleError
		infraErr      *InfrastructureError
	)

	return errors.As(err, &validationErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &businessErr) ||
		errors.As(err, &infraErr)
}
