package metrics

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/battwarn/internal/errors"
	"codeberg.org/mutker/battwarn/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "data", "metrics.db")
	cfg.BatchSize = 1
	return cfg
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestDisabledServiceIsNoop(t *testing.T) {
	rec, err := NewService(DefaultConfig(), logger.New())
	require.NoError(t, err)
	assert.IsType(t, &noopRecorder{}, rec)

	require.NoError(t, rec.RecordSample(context.Background(), &Sample{}))
	require.NoError(t, rec.RecordAlert(context.Background(), &AlertEvent{}))
	require.NoError(t, rec.Close())
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidDBPath))

	cfg = DefaultConfig()
	cfg.BatchSize = -1
	require.Error(t, cfg.Validate())
}

func TestRecordSamplesAndAlerts(t *testing.T) {
	cfg := testConfig(t)
	rec, err := NewService(cfg, logger.New())
	require.NoError(t, err)

	svc := rec.(*service)
	repo := svc.repo.(*repository)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, rec.RecordSample(ctx, &Sample{Timestamp: now, Device: "battery0", Charge: 0.18, LowFired: true}))
	require.NoError(t, rec.RecordSample(ctx, &Sample{Timestamp: now.Add(time.Minute), Device: "battery0", Charge: 0.05, LowFired: true, CriticalFired: true}))

	alert := &AlertEvent{Timestamp: now, Device: "battery0", Kind: "low", Charge: 0.18}
	require.NoError(t, rec.RecordAlert(ctx, alert))
	assert.NotEqual(t, uuid.Nil, alert.ID, "alert ID should be assigned")

	assert.Equal(t, 2, countRows(t, repo.db, "samples"))
	assert.Equal(t, 1, countRows(t, repo.db, "alerts"))

	var kind, id string
	var charge float64
	require.NoError(t, repo.db.QueryRow("SELECT id, kind, charge FROM alerts").Scan(&id, &kind, &charge))
	assert.Equal(t, alert.ID.String(), id)
	assert.Equal(t, "low", kind)
	assert.InDelta(t, 0.18, charge, 1e-9)

	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close(), "second close is a no-op")
}

func TestBatchedSamplesFlushOnClose(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 5
	cfg.BatchTimeout = 3600

	repoIface, err := NewRepository(cfg, logger.New())
	require.NoError(t, err)
	repo := repoIface.(*repository)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.StoreSample(&Sample{Timestamp: time.Now(), Device: "battery0", Charge: 0.5}))
	}
	assert.Equal(t, 0, countRows(t, repo.db, "samples"), "samples stay buffered below batch size")

	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 3, countRows(t, db, "samples"))
}

func TestRejectedAlertKind(t *testing.T) {
	cfg := testConfig(t)
	rec, err := NewService(cfg, logger.New())
	require.NoError(t, err)
	defer rec.Close()

	err = rec.RecordAlert(context.Background(), &AlertEvent{Timestamp: time.Now(), Device: "battery0", Kind: "bogus"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrMetricsCollection))
}

func TestRecordCancelled(t *testing.T) {
	rec, err := NewService(testConfig(t), logger.New())
	require.NoError(t, err)
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = rec.RecordSample(ctx, &Sample{Device: "battery0"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrOperationTimeout))

	err = rec.RecordSample(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidMetrics))
}

func TestSchemaMigrationBacksUpOldVersion(t *testing.T) {
	cfg := testConfig(t)

	repo, err := NewRepository(cfg, logger.New())
	require.NoError(t, err)
	_, err = repo.(*repository).db.Exec("UPDATE schema_versions SET version = 0 WHERE version = ?", SchemaVersion)
	require.NoError(t, err)
	_, err = repo.(*repository).db.Exec("INSERT INTO schema_versions (version, applied_at) VALUES (99, datetime('now'))")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewRepository(cfg, logger.New())
	require.NoError(t, err)
	defer repo.Close()

	version, err := GetSchemaVersion(repo.(*repository).db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	entries, err := os.ReadDir(cfg.backupDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "metrics_v99_")
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testConfig(t)

	repo, err := NewRepository(cfg, logger.New())
	require.NoError(t, err)
	require.NoError(t, repo.StoreSample(&Sample{Timestamp: time.Now(), Device: "battery0", Charge: 0.9}))
	require.NoError(t, repo.Close())

	repo, err = NewRepository(cfg, logger.New())
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, 1, countRows(t, repo.(*repository).db, "samples"))
	_, err = os.Stat(cfg.backupDir())
	assert.True(t, os.IsNotExist(err), "no backup for a current schema")
}
