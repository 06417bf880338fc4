package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; live queries read while services write
	sqlDB.SetMaxOpenConns(1)

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	models := []struct {
		name  string
		model any
	}{
		{"Document", &docstore.Record{}},
		{"Credential", &entities.Credential{}},
		{"PasswordReset", &entities.PasswordReset{}},
		{"Blob", &entities.Blob{}},
		{"ArbitraryData", &entities.ArbitraryData{}},
	}

	for _, m := range models {
		if err := c.DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate %s entity: %w", m.name, err)
		}
	}

	if err := c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection)").
		Error; err != nil {
		return fmt.Errorf("failed to create documents index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
