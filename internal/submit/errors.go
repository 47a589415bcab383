package submit

import "errors"

// ErrInFlight is returned when submit is triggered while an earlier attempt
// has not settled yet.
var ErrInFlight = errors.New("a submission is already in progress")

// PreparationError means the payload could not be captured. No request was sent.
type PreparationError struct {
	Err error
}

func (e *PreparationError) Error() string {
	return "failed to prepare files: " + e.Err.Error()
}

func (e *PreparationError) Unwrap() error {
	return e.Err
}
