// Package telemetry reads battery charge levels through github.com/distatus/battery.
package telemetry

import (
	"context"
	"fmt"
	"math"

	"codeberg.org/mutker/battwarn/internal/errors"
	"github.com/distatus/battery"
)

type batterySource struct {
	getAll func() ([]*battery.Battery, error)
	get    func(idx int) (*battery.Battery, error)
}

// New returns a Source backed by the operating system's battery interface.
func New() Source {
	return &batterySource{
		getAll: battery.GetAll,
		get:    battery.Get,
	}
}

func (s *batterySource) Enumerate(ctx context.Context) ([]Device, error) {
	errFactory := errors.New()

	if err := ctx.Err(); err != nil {
		return nil, errFactory.Wrap(ErrOperationTimeout, err)
	}

	batteries, err := s.getAll()
	if err != nil {
		var perBattery battery.Errors
		if !errors.As(err, &perBattery) {
			return nil, errFactory.Wrap(ErrEnumerateFailed, err)
		}

		for i, batteryErr := range perBattery {
			if usable(batteryErr) != nil {
				return nil, errFactory.Wrap(ErrEnumerateFailed, fmt.Errorf("battery %d: %w", i, batteryErr))
			}
		}
	}

	devices := make([]Device, 0, len(batteries))
	for i, b := range batteries {
		if b == nil {
			return nil, errFactory.WithData(ErrEnumerateFailed, fmt.Sprintf("battery %d: no data", i))
		}
		devices = append(devices, Device{Index: i, ID: fmt.Sprintf("battery%d", i)})
	}

	return devices, nil
}

func (s *batterySource) Refresh(ctx context.Context, d Device) (float64, error) {
	errFactory := errors.New()

	if err := ctx.Err(); err != nil {
		return 0, errFactory.Wrap(ErrOperationTimeout, err)
	}

	b, err := s.get(d.Index)
	if err := usable(err); err != nil {
		return 0, errFactory.Wrap(ErrRefreshFailed, fmt.Errorf("%s: %w", d.ID, err))
	}
	if b == nil {
		return 0, errFactory.WithData(ErrRefreshFailed, d.ID+": no data")
	}

	return chargeFraction(d, b)
}

// usable filters out partial errors on fields the charge fraction does not need
func usable(err error) error {
	if err == nil {
		return nil
	}

	var partial battery.ErrPartial
	if errors.As(err, &partial) && partial.Current == nil && partial.Full == nil {
		return nil
	}

	return err
}

func chargeFraction(d Device, b *battery.Battery) (float64, error) {
	errFactory := errors.New()

	if b.Full <= 0 || math.IsNaN(b.Current) || math.IsNaN(b.Full) {
		return 0, errFactory.WithData(ErrInvalidReading,
			fmt.Sprintf("%s: current=%v full=%v", d.ID, b.Current, b.Full))
	}

	fraction := b.Current / b.Full
	if fraction < 0 {
		return 0, nil
	}
	if fraction > 1 {
		return 1, nil
	}

	return fraction, nil
}
