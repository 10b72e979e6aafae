// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors. Configuration errors are fatal and must surface
// before the simulation loop starts.
var (
	ErrNoStockData     = errors.New("stock data not set")
	ErrNoOptionsData   = errors.New("options data not set")
	ErrNoStrategy      = errors.New("options strategy not set")
	ErrSchemaMismatch  = errors.New("options data schema does not match strategy schema")
	ErrDateMismatch    = errors.New("stock and options dates do not match (check that timezones are equal)")
	ErrSymbolNotFound  = errors.New("symbol not found in stock data")
	ErrBadAllocation   = errors.New("invalid allocation")
	ErrBadStockWeights = errors.New("stock percentages must sum to 1.0")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// ConfigError wraps a fatal configuration problem with the field that caused it.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error [%s]: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataError represents an error loading or normalizing a market data series.
type DataError struct {
	Source string
	Op     string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error [%s] %s: %v", e.Source, e.Op, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(source, op string, err error) *DataError {
	return &DataError{
		Source: source,
		Op:     op,
		Err:    err,
	}
}
