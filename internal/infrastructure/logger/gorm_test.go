package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	newLogger := func(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
		core, recorded := observer.New(zap.DebugLevel)
		return NewGormLogger(zap.New(core), level, opts...), recorded
	}

	t.Run("logs slow queries as warnings", func(t *testing.T) {
		gl, recorded := newLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		begin := time.Now().Add(-50 * time.Millisecond)
		gl.Trace(context.Background(), begin, func() (string, int64) {
			return "SELECT * FROM pieces", 10
		}, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
		assert.Equal(t, "SELECT * FROM pieces", entries[0].ContextMap()["sql"])
	})

	t.Run("logs errors", func(t *testing.T) {
		gl, recorded := newLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "UPDATE projects SET is_active = false", 0
		}, errors.New("connection reset"))

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	})

	t.Run("ignores record not found by default", func(t *testing.T) {
		gl, recorded := newLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT * FROM projects WHERE guid = $1", 0
		}, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("silent level logs nothing", func(t *testing.T) {
		gl, recorded := newLogger(gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, errors.New("ignored"))

		assert.Empty(t, recorded.All())
	})

	t.Run("includes company from context", func(t *testing.T) {
		gl, recorded := newLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		ctx := context.WithValue(context.Background(), CompanyIDKey, "company-9")
		gl.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
			return "SELECT * FROM assemblies", 3
		}, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "company-9", entries[0].ContextMap()["company_guid"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
