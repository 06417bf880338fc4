package livequery

import (
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *docstore.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "live.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err = db.AutoMigrate(&docstore.Record{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store := docstore.NewStore(db)
	t.Cleanup(func() {
		store.Close()
		_ = sqlDB.Close()
	})
	return store
}
