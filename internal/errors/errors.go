package errors

import "fmt"

var (
	ErrInsufficientFunds = fmt.Errorf("insufficient funds")
	ErrBelowMinimum      = fmt.Errorf("amount below withdrawal minimum")
	ErrInvalidAmount     = fmt.Errorf("invalid amount")
	ErrRequestNotFound   = fmt.Errorf("request not found")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrAlreadyProcessed  = fmt.Errorf("request already processed")
	ErrNotSpreadsheet    = fmt.Errorf("file is not an xlsx spreadsheet")
	ErrNegativePrice     = fmt.Errorf("price must not be negative")
)
