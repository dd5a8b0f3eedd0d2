package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnauthorized        = errors.New("caller is not an operator")
	ErrInvalidTransition   = errors.New("illegal flow-state transition")
	ErrInvalidStatusChange = errors.New("status may not move backward")
	ErrPromoExpired        = errors.New("promo code has expired")
	ErrPromoExhausted      = errors.New("promo code usage limit reached")
	ErrNoActiveSession     = errors.New("user has no active session")
	ErrValidation          = errors.New("malformed admin input")
	ErrLockContended       = errors.New("another update for this user is in flight")

	// Storage-layer errors
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
