package storage

import (
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testDBCounter uint64

// InitializeTestDB opens a fresh in-memory sqlite database, runs the
// migrations and assigns it to DB. Each call gets an isolated database.
func InitializeTestDB() (*gorm.DB, error) {
	n := atomic.AddUint64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:nightplans_test_%d?mode=memory&cache=shared", n)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	PerformMigrations(db)
	DB = db
	return db, nil
}
