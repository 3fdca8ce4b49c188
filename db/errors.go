package db

import "fmt"

// Common errors
var (
	ErrNotFound           = fmt.Errorf("document not found")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrDatabaseConnection = fmt.Errorf("database connection error")
	ErrTransactionFailed  = fmt.Errorf("transaction failed")
	ErrUnsupportedStore   = fmt.Errorf("unsupported store uri")
)
