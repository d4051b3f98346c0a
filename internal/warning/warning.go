// Package warning implements the edge-triggered threshold state machine that
// decides when a battery alert is raised.
//
// Each (device, kind) pair is either armed or fired. An armed pair fires once
// when the charge fraction drops to or below its threshold and stays fired,
// without raising further alerts, until the fraction rises strictly above the
// threshold again. Recovery re-arms silently.
package warning

import (
	"fmt"

	"codeberg.org/mutker/battwarn/internal/errors"
)

// Kind identifies a threshold class.
type Kind int

const (
	Low Kind = iota
	Critical
)

func (k Kind) String() string {
	switch k {
	case Low:
		return "low"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Message returns the notification title and body for an alert of kind k at
// the given charge fraction.
func (k Kind) Message(fraction float64) (title, body string) {
	percent := fraction * 100

	switch k {
	case Critical:
		return "Battery critical", fmt.Sprintf("Battery is critical: %.1f%%", percent)
	default:
		return "Battery low", fmt.Sprintf("Battery is low: %.1f%%", percent)
	}
}

// Evaluate applies one poll's charge fraction to a fired flag.
// It reports the new flag and whether an alert must be raised now.
func Evaluate(percent float64, fired bool, threshold float64) (newFired, shouldAlert bool) {
	if percent <= threshold {
		return true, !fired
	}

	return false, false
}

// Threshold is a configured level for one kind, as a fraction in [0,1].
type Threshold struct {
	Kind  Kind
	Level float64
}

// Thresholds holds the configured thresholds in evaluation order.
type Thresholds []Threshold

// NewThresholds converts optional integer percentages into thresholds.
// Low is ordered before Critical. When both are set critical must be strictly
// below low.
func NewThresholds(low, critical *int) (Thresholds, error) {
	errFactory := errors.New()

	for _, p := range []struct {
		name  string
		value *int
	}{{"low", low}, {"critical", critical}} {
		if p.value != nil && (*p.value < 0 || *p.value > 100) {
			return nil, errFactory.WithData(errors.ErrInvalidThreshold, fmt.Sprintf("%s=%d", p.name, *p.value))
		}
	}

	if low != nil && critical != nil && *critical >= *low {
		return nil, errFactory.New(errors.ErrInvalidThresholdOrder)
	}

	var t Thresholds
	if low != nil {
		t = append(t, Threshold{Kind: Low, Level: float64(*low) / 100})
	}
	if critical != nil {
		t = append(t, Threshold{Kind: Critical, Level: float64(*critical) / 100})
	}

	return t, nil
}

// Key addresses the fired flag of one kind on one device.
type Key struct {
	Device string
	Kind   Kind
}

// States holds the fired flag per (device, kind). A missing entry is armed.
type States map[Key]bool

// Apply evaluates percent against t for device, stores the resulting flag and
// reports whether an alert must be raised.
func (s States) Apply(device string, t Threshold, percent float64) bool {
	key := Key{Device: device, Kind: t.Kind}

	fired, alert := Evaluate(percent, s[key], t.Level)
	s[key] = fired

	return alert
}

// Fired reports whether device currently has a fired alert of kind k.
func (s States) Fired(device string, k Kind) bool {
	return s[Key{Device: device, Kind: k}]
}
