package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrSessionBusy   = errors.New("another session is active, stop it first")
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// ValidationError reports a recipe that breaks a builder rule. Message is
// meant for the user; the error matches ErrInvalidRecipe.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrInvalidRecipe) match.
func (e *ValidationError) Unwrap() error { return ErrInvalidRecipe }
