package testutil

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/yungbote/coursetree/internal/domain"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	freshSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns the shared test database: Postgres when TEST_POSTGRES_DSN is set,
// otherwise a shared in-memory SQLite database. Pair it with Tx.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			db, dbErr = gorm.Open(postgres.Open(dsn), gormConfig())
		} else {
			db, dbErr = openSQLite("coursetree_shared")
		}
		if dbErr != nil {
			return
		}
		dbErr = db.AutoMigrate(types.AllModels()...)
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

// FreshDB returns an isolated in-memory SQLite database for tests that need
// real commits and rollbacks.
func FreshDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := fmt.Sprintf("coursetree_fresh_%d", freshSeq.Add(1))
	fresh, err := openSQLite(name)
	if err != nil {
		tb.Fatalf("open fresh db: %v", err)
	}
	if err := fresh.AutoMigrate(types.AllModels()...); err != nil {
		tb.Fatalf("migrate fresh db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := fresh.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return fresh
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func openSQLite(name string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if sqlDB == nil {
		return nil, errors.New("sqlite: nil sql.DB")
	}
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}
}
