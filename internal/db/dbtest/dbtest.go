// Package dbtest opens isolated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dialysis-scheduler/internal/db"
	"dialysis-scheduler/internal/model"
)

// Open returns a migrated in-memory SQLite database private to the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

// SeedMachines inserts n active machines with ids 1..n.
func SeedMachines(t *testing.T, gormDB *gorm.DB, n int) []model.Machine {
	t.Helper()

	machines := make([]model.Machine, 0, n)
	for i := 1; i <= n; i++ {
		machines = append(machines, model.Machine{
			ID:                   int64(i),
			DisplayName:          fmt.Sprintf("Machine %02d", i),
			Active:               true,
			AvgProcessingMinutes: 240,
		})
	}
	require.NoError(t, gormDB.Create(&machines).Error)
	return machines
}

// SeedPatient inserts a patient on the given weekday set.
func SeedPatient(t *testing.T, gormDB *gorm.DB, id int64, set model.WeekdaySet) model.Patient {
	t.Helper()

	p := model.Patient{
		ID:              id,
		Name:            fmt.Sprintf("Patient %d", id),
		Schedule:        set,
		PreferredPeriod: model.PeriodMorning,
	}
	require.NoError(t, gormDB.Create(&p).Error)
	return p
}
