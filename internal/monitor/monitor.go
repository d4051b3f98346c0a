// Package monitor drives the warning state machine over every battery on a
// fixed interval and hands raised alerts to the notification sink.
package monitor

import (
	"context"
	"time"

	"codeberg.org/mutker/battwarn/internal/errors"
	"codeberg.org/mutker/battwarn/internal/logger"
	"codeberg.org/mutker/battwarn/internal/metrics"
	"codeberg.org/mutker/battwarn/internal/notify"
	"codeberg.org/mutker/battwarn/internal/telemetry"
	"codeberg.org/mutker/battwarn/internal/warning"
)

const (
	ErrReadFailed     = errors.ErrorCode("monitor_read_failed")
	ErrDispatchFailed = errors.ErrorCode("monitor_dispatch_failed")

	DefaultInterval = 60 * time.Second
)

type Monitor struct {
	source     telemetry.Source
	sink       notify.Sink
	recorder   metrics.Recorder
	log        logger.Logger
	thresholds warning.Thresholds
	interval   time.Duration
	now        func() time.Time

	devices []telemetry.Device
	states  warning.States
}

type Option func(*Monitor)

// WithInterval sets the time between polls.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithRecorder records samples and alerts. Recording is best effort.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Monitor) {
		m.recorder = r
	}
}

func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) {
		m.log = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// New enumerates the batteries once and arms every configured threshold on
// each of them. Devices are not re-enumerated later.
func New(
	ctx context.Context,
	source telemetry.Source,
	sink notify.Sink,
	thresholds warning.Thresholds,
	opts ...Option,
) (*Monitor, error) {
	errFactory := errors.New()

	m := &Monitor{
		source:     source,
		sink:       sink,
		thresholds: thresholds,
		interval:   DefaultInterval,
		log:        logger.New(),
		now:        time.Now,
		states:     warning.States{},
	}
	for _, opt := range opts {
		opt(m)
	}

	devices, err := source.Enumerate(ctx)
	if err != nil {
		return nil, errFactory.Wrap(ErrReadFailed, err)
	}
	if len(devices) == 0 {
		return nil, errFactory.New(telemetry.ErrNoBatteries)
	}
	m.devices = devices

	for _, d := range devices {
		for _, t := range thresholds {
			m.states[warning.Key{Device: d.ID, Kind: t.Kind}] = false
		}
		m.log.Info().Str("device", d.ID).Msg("Monitoring battery")
	}

	if len(thresholds) == 0 {
		m.log.Warn().Msg("No thresholds configured, no alerts will be raised")
	}

	return m, nil
}

// Devices returns the batteries captured at startup.
func (m *Monitor) Devices() []telemetry.Device {
	return m.devices
}

// Fired reports whether device has a fired alert of kind k.
func (m *Monitor) Fired(device string, k warning.Kind) bool {
	return m.states.Fired(device, k)
}

// Run polls immediately and then once per interval until ctx is cancelled or
// a cycle fails. Cancellation is not an error.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Info().Dur("interval", m.interval).Int("devices", len(m.devices)).Msg("Polling started")

	for {
		if err := m.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle reads every device once and dispatches the alerts that became due.
// The first read or dispatch failure aborts the cycle.
func (m *Monitor) Cycle(ctx context.Context) error {
	for _, d := range m.devices {
		if err := m.poll(ctx, d); err != nil {
			return err
		}
	}

	return nil
}

func (m *Monitor) poll(ctx context.Context, d telemetry.Device) error {
	errFactory := errors.New()

	charge, err := m.source.Refresh(ctx, d)
	if err != nil {
		return errFactory.Wrap(ErrReadFailed, err)
	}

	m.log.Debug().Str("device", d.ID).Float64("charge", charge).Msg("Battery read")

	for _, t := range m.thresholds {
		if !m.states.Apply(d.ID, t, charge) {
			continue
		}

		title, body := t.Kind.Message(charge)
		m.log.Info().
			Str("device", d.ID).
			Stringer("kind", t.Kind).
			Float64("charge", charge).
			Float64("threshold", t.Level).
			Msg(body)

		if err := m.sink.Notify(ctx, title, body); err != nil {
			return errFactory.Wrap(ErrDispatchFailed, err)
		}

		m.record(func() error {
			return m.recorder.RecordAlert(ctx, &metrics.AlertEvent{
				Timestamp: m.now(),
				Device:    d.ID,
				Kind:      t.Kind.String(),
				Charge:    charge,
			})
		})
	}

	m.record(func() error {
		return m.recorder.RecordSample(ctx, &metrics.Sample{
			Timestamp:     m.now(),
			Device:        d.ID,
			Charge:        charge,
			LowFired:      m.states.Fired(d.ID, warning.Low),
			CriticalFired: m.states.Fired(d.ID, warning.Critical),
		})
	})

	return nil
}

func (m *Monitor) record(fn func() error) {
	if m.recorder == nil {
		return
	}
	if err := fn(); err != nil {
		m.log.Warn().Err(err).Msg("Failed to record metrics")
	}
}
