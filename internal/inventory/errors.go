package inventory

import "errors"

var (
	// ErrVehicleNotFound is returned when no vehicle carries the stock number.
	ErrVehicleNotFound = errors.New("inventory: vehicle not found")
	// ErrMakeNotFound is returned for an unknown make id.
	ErrMakeNotFound = errors.New("inventory: make not found")
	// ErrModelNotFound is returned for an unknown model id.
	ErrModelNotFound = errors.New("inventory: model not found")
)
