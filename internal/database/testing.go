package database

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTest поднимает чистую sqlite-базу во временном каталоге теста и прогоняет миграции.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "casebook_test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(openSQLite(dsn), gormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// sqlite не любит параллельных писателей
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
