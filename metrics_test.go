package wavop

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	b := &BasicMetricsCollector{}
	b.RecordApply(KindFullForward, 2, 4*time.Millisecond, nil)
	b.RecordApply(KindJacobian, 1, 2*time.Millisecond, errors.New("x"))
	b.RecordShot(KindFullForward, time.Millisecond, nil)
	b.RecordShot(KindFullForward, 3*time.Millisecond, errors.New("x"))
	b.RecordPersist(2, time.Millisecond, nil)

	stats := b.GetStats()
	assert.Equal(t, int64(2), stats.ApplyCount)
	assert.Equal(t, int64(1), stats.ApplyErrors)
	assert.Equal(t, int64(3), stats.ApplyShots)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.ApplyAvgNanos)
	assert.Equal(t, int64(2), stats.ShotCount)
	assert.Equal(t, int64(1), stats.ShotErrors)
	assert.Equal(t, (2 * time.Millisecond).Nanoseconds(), stats.ShotAvgNanos)
	assert.Equal(t, int64(2), stats.RecordsWritten)

	assert.Equal(t, int64(0), (&BasicMetricsCollector{}).GetStats().ShotAvgNanos)
}

func TestNoopDefaults(t *testing.T) {
	cfg, err := applyOptions([]Option{WithLogger(nil), WithMetricsCollector(nil)})
	assert.NoError(t, err)
	assert.IsType(t, NoopMetricsCollector{}, cfg.metrics)
	assert.NotNil(t, cfg.logger)
	assert.Nil(t, cfg.records)
}
