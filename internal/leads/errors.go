package leads

import (
	"errors"
	"fmt"

	"github.com/wolfman30/autolead-platform/internal/inventory"
)

var (
	// ErrVehicleNotFound is returned when a send-to-mobile request names a
	// stock number that is not in inventory.
	ErrVehicleNotFound = fmt.Errorf("leads: %w", inventory.ErrVehicleNotFound)

	// ErrConfiguration marks a workflow the service was not built to handle.
	ErrConfiguration = errors.New("leads: workflow not configured")
)

// ExternalServiceError wraps a failure of a downstream provider.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("leads: %s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func external(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}
