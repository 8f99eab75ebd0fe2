package billing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidPercentage = errors.New("commission percentage must be between 0 and 100")
	ErrMissingField      = errors.New("required field is empty")
	ErrMerchantNotFound  = errors.New("merchant not found")
	ErrPaymentConflict   = errors.New("payment already recorded with different details")
)

// StorageError is a query the database rejected. Err holds the driver's
// message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
