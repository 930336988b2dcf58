package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation")           // 400
	ErrUnauthorized        = errors.New("unauthorized")         // 401
	ErrUserNotProvisioned  = errors.New("user not provisioned") // 403
	ErrNotFound            = errors.New("not found")            // 404
	ErrItemNotFound        = errors.New("item not found")       // 404
	ErrOrderNotFound       = errors.New("order not found")      // 404
	ErrCheckoutFailed      = errors.New("checkout failed")      // 502
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrInvalidSignature    = errors.New("invalid signature") // 400
	ErrMissingEmail        = errors.New("missing email")     // 400
	ErrEmailConflict       = errors.New("email conflict")    // 409
)

// ItemNotFoundError names the first requested item id that is absent from the catalog.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ItemID)
}

func (e *ItemNotFoundError) Unwrap() error { return ErrItemNotFound }
