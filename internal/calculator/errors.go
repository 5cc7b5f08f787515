package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned for nonsensical indicator parameters.
// A series that is too short is not an error; the engines return an empty result.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParamError describes which parameter was rejected and why.
type ParamError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

func invalidPeriod(name string, period int) error {
	if period < 1 {
		return &ParamError{Param: name, Value: period, Reason: "must be >= 1"}
	}
	return nil
}
