package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"casebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT * FROM payments", 3 }
	ctx := context.Background()

	tests := []struct {
		name  string
		level logger.LogLevel
		begin time.Time
		err   error
		want  []string
	}{
		{"error", logger.Warn, time.Now(), errors.New("no such table"), []string{`"level":"error"`, "no such table", "SELECT * FROM payments", "query failed"}},
		{"not found is quiet", logger.Warn, time.Now(), gorm.ErrRecordNotFound, nil},
		{"slow", logger.Warn, time.Now().Add(-time.Second), nil, []string{`"level":"warn"`, "slow query", `"rows":3`}},
		{"fast at warn", logger.Warn, time.Now(), nil, nil},
		{"fast at info", logger.Info, time.Now(), nil, []string{`"level":"debug"`, `"component":"gorm"`}},
		{"silent", logger.Silent, time.Now().Add(-time.Second), errors.New("boom"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			newGormLogger(logger.Warn).LogMode(tt.level).Trace(ctx, tt.begin, sql, tt.err)
			if tt.want == nil {
				assert.Empty(t, buf.String())
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestGormLogger_WiredIntoConfig(t *testing.T) {
	buf := captureLog(t)
	db := OpenTest(t)
	db.Logger = db.Logger.LogMode(logger.Warn)

	err := db.Raw("SELECT * FROM no_such_table").Scan(&[]models.Payment{}).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
	assert.Contains(t, buf.String(), `"component":"gorm"`)
}
