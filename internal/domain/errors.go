package domain

import (
	"errors"
	"fmt"
)

// ErrNotTrained signals that a forecast was requested before any model was trained
// (or before a saved model was loaded) for the room type in question.
var ErrNotTrained = errors.New("demand model is not trained")

// ErrUnknownRoomType signals a rule-set lookup for a room type with no configured rules.
var ErrUnknownRoomType = errors.New("unknown room type")

// ConfigError reports invalid configuration: missing feature or target columns,
// non-negative elasticity, inverted price bounds. Never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// NewConfigError builds a ConfigError from a format string.
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// DataError reports invalid or insufficient input data, naming the rows or columns
// at fault so the caller can drop bad rows and retry.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "data: " + e.Reason
}

// NewDataError builds a DataError from a format string.
func NewDataError(format string, args ...interface{}) *DataError {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsDataError reports whether err is (or wraps) a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
