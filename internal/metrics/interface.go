package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recorder keeps a history of battery readings and raised alerts
type Recorder interface {
	RecordSample(ctx context.Context, sample *Sample) error
	RecordAlert(ctx context.Context, alert *AlertEvent) error
	Close() error
}

// Repository defines the interface for metrics data storage
type Repository interface {
	StoreSample(sample *Sample) error
	StoreAlert(alert *AlertEvent) error
	Close() error
}

// Sample is one battery reading with the warning state after evaluation
type Sample struct {
	Timestamp     time.Time
	Device        string
	Charge        float64
	LowFired      bool
	CriticalFired bool
}

// AlertEvent is one dispatched notification
type AlertEvent struct {
	ID        uuid.UUID
	Timestamp time.Time
	Device    string
	Kind      string
	Charge    float64
}
