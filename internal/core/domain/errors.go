package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfig     = errors.New("config error")
	ErrExtraction = errors.New("extraction error")
	ErrOracle     = errors.New("oracle error")
	ErrCopy       = errors.New("copy error")
	ErrTemporary  = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ErrorKind names the taxonomy kind of an error for run reporting.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrOracle):
		return "oracle"
	case errors.Is(err, ErrCopy):
		return "copy"
	case errors.Is(err, ErrConfig):
		return "config"
	default:
		return "unknown"
	}
}
