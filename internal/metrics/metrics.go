package metrics

import (
	"context"

	"codeberg.org/mutker/battwarn/internal/errors"
	"codeberg.org/mutker/battwarn/internal/logger"
	"github.com/google/uuid"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation
type noopRecorder struct{}

func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If metrics is disabled, return a no-op recorder
	if !cfg.Enabled {
		log.Debug().Msg("Metrics collection disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create metrics repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Bool("enabled", cfg.Enabled).
		Msg("Metrics service initialized successfully")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) RecordSample(ctx context.Context, sample *Sample) error {
	errFactory := errors.New()

	if sample == nil {
		return errFactory.New(ErrInvalidMetrics)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.StoreSample(sample); err != nil {
			return errFactory.Wrap(ErrMetricsCollection, err)
		}
	}

	return nil
}

func (s *service) RecordAlert(ctx context.Context, alert *AlertEvent) error {
	errFactory := errors.New()

	if alert == nil {
		return errFactory.New(ErrInvalidMetrics)
	}
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.StoreAlert(alert); err != nil {
			return errFactory.Wrap(ErrMetricsCollection, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

// No-op implementation
func (*noopRecorder) RecordSample(_ context.Context, _ *Sample) error {
	return nil
}

func (*noopRecorder) RecordAlert(_ context.Context, _ *AlertEvent) error {
	return nil
}

func (*noopRecorder) Close() error {
	return nil
}
