package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request is valid but conflicts with the current state
// of the resource (e.g. liquidating a deposit that is already closed).
var ErrConflict = errors.New("conflict with current resource state")

// ErrForbidden indicates the authenticated user is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure that should not leak details.
var ErrInternal = errors.New("internal error")

// ErrUnbalanced indicates a journal whose debit and credit totals do not match.
var ErrUnbalanced = errors.New("journal entries do not balance")

// ErrInsufficientFunds indicates a wallet or position cannot cover the requested amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInactive indicates an operation against a deactivated wallet or account.
var ErrInactive = errors.New("resource is inactive")
