package repositories

import (
	"context"
	"encoding/json"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Data is a small key-value store for client state that must survive restarts.
type Data struct {
	db *gorm.DB
}

func NewDataRepository(db *gorm.DB) *Data {
	return &Data{db: db}
}

func (repo *Data) Save(ctx context.Context, id string, data []byte) error {
	return repo.db.WithContext(ctx).Save(&entities.ArbitraryData{
		ID:    id,
		Value: data,
	}).Error
}

// Load returns nil without an error when nothing is stored under id.
func (repo *Data) Load(ctx context.Context, id string) ([]byte, error) {
	data := &entities.ArbitraryData{}
	err := repo.db.WithContext(ctx).First(data, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return data.Value, nil
}

func (repo *Data) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Delete(&entities.ArbitraryData{}, "id = ?", id).Error
}

func (repo *Data) SaveJSON(ctx context.Context, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", id)
	}
	return repo.Save(ctx, id, data)
}

// LoadJSON reports false when nothing is stored under id.
func (repo *Data) LoadJSON(ctx context.Context, id string, value any) (bool, error) {
	data, err := repo.Load(ctx, id)
	if err != nil || data == nil {
		return false, err
	}
	if err = json.Unmarshal(data, value); err != nil {
		return false, errors.Wrapf(err, "failed to decode %s", id)
	}
	return true, nil
}
