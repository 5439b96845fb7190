package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeStorage represents storage-related errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScraperError represents a scraper-specific error
type ScraperError struct {
	Type     ErrorType
	Supplier string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *ScraperError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Supplier, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Supplier, e.Message)
}

// Unwrap returns the underlying error
func (e *ScraperError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScraperError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeRateLimit:
		return false
	case ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// New creates a new ScraperError
func New(errType ErrorType, supplier, message string, err error) *ScraperError {
	return &ScraperError{
		Type:     errType,
		Supplier: supplier,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(supplier, message string, err error) *ScraperError {
	return New(ErrorTypeNetwork, supplier, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(supplier, message string, err error) *ScraperError {
	return New(ErrorTypeParsing, supplier, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(supplier string, duration time.Duration) *ScraperError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, supplier, message, nil)
}

// NewCache creates a new cache error
func NewCache(supplier, message string, err error) *ScraperError {
	return New(ErrorTypeCache, supplier, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(supplier, message string, err error) *ScraperError {
	return New(ErrorTypePublisher, supplier, message, err)
}

// NewStorage creates a new storage error
func NewStorage(message string, err error) *ScraperError {
	return New(ErrorTypeStorage, "", message, err)
}

// NewValidation creates a new validation error
func NewValidation(supplier, message string) *ScraperError {
	return New(ErrorTypeValidation, supplier, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScraperError {
	return New(ErrorTypeConfiguration, "", message, err)
}
