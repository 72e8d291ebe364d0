package extractor

import "errors"

// ErrInvalidJSON signals that the measurement response is not a JSON document
var ErrInvalidJSON = errors.New("measurement response is not valid JSON")

type errPathNotFound string

func (e errPathNotFound) Error() string {
	return "JSON path not found in response: " + string(e)
}

type errNotANumber string

func (e errNotANumber) Error() string {
	return "JSON path does not hold a number: " + string(e)
}

type errOutOfRange string

func (e errOutOfRange) Error() string {
	return "JSON path holds a value out of range: " + string(e)
}

// IsExtractionError returns true if the error was produced while reading the metrics out of a response
func IsExtractionError(err error) bool {
	if errors.Is(err, ErrInvalidJSON) {
		return true
	}

	var pathErr errPathNotFound
	if errors.As(err, &pathErr) {
		return true
	}

	var numErr errNotANumber
	if errors.As(err, &numErr) {
		return true
	}

	var rangeErr errOutOfRange
	return errors.As(err, &rangeErr)
}
