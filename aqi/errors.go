package aqi

import (
	"errors"
	"fmt"
)

// ErrInsufficientHistory is returned when a sensor has fewer stored readings
// than the forecast lag window needs.
var ErrInsufficientHistory = errors.New("not enough data")

// ErrUnknownSensor is wrapped by stores that refuse a reading for a sensor
// that does not exist. Ingest still reports it inside a *StorageError.
var ErrUnknownSensor = errors.New("unknown sensor")

// ModelInferenceError reports a failed call to one of the regression models.
type ModelInferenceError struct {
	Endpoint string
	Err      error
}

func (e *ModelInferenceError) Error() string {
	return fmt.Sprintf("model %s inference failed: %v", e.Endpoint, e.Err)
}

func (e *ModelInferenceError) Unwrap() error { return e.Err }

// StorageError reports a failed read or write against the reading store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
