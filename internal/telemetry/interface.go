package telemetry

import "context"

// Source reads charge levels from the power supplies of the machine
type Source interface {
	// Enumerate returns the devices present at call time
	Enumerate(ctx context.Context) ([]Device, error)
	// Refresh returns the charge of d as a fraction in [0,1]
	Refresh(ctx context.Context, d Device) (float64, error)
}

// Device is a handle to one power supply. ID is stable for the process lifetime.
type Device struct {
	Index int
	ID    string
}

func (d Device) String() string {
	return d.ID
}
