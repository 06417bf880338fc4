package docstore

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Record is the persisted form of a document: its fields are kept as a JSON object.
type Record struct {
	Collection string `gorm:"primaryKey"`
	ID         string `gorm:"primaryKey"`
	Data       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Record) TableName() string {
	return "documents"
}

type Store struct {
	db            *gorm.DB
	mu            sync.Mutex
	watchers      map[string]map[uint64]*watcher
	nextWatcherID uint64
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, watchers: make(map[string]map[uint64]*watcher)}
}

func (s *Store) Get(ctx context.Context, collection, id string) (*Document, error) {

	var record Record
	err := s.db.WithContext(ctx).First(&record, "collection = ? AND id = ?", collection, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc, err := newDocument(record)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

// Set creates or overwrites the document with the given id.
func (s *Store) Set(ctx context.Context, collection, id string, fields any) error {

	data, _, err := encodeFields(fields)
	if err != nil {
		return fmt.Errorf("fields of %s/%s must encode to a JSON object: %w", collection, id, err)
	}

	record := Record{Collection: collection, ID: id, Data: data}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return err
	}

	s.notifyWatchers(collection)
	return nil
}

// Update merges fields into an existing document. Keys may be dotted paths into nested objects.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var record Record
		if err := tx.First(&record, "collection = ? AND id = ?", collection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		doc, err := newDocument(record)
		if err != nil {
			return err
		}

		for path, value := range fields {
			setPath(doc.Data, path, normalize(value))
		}

		data, _, err := encodeFields(doc.Data)
		if err != nil {
			return err
		}

		return tx.Model(&Record{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]any{"data": data, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return err
	}

	s.notifyWatchers(collection)
	return nil
}

// Add creates a document with a generated id.
func (s *Store) Add(ctx context.Context, collection string, fields any) (string, error) {

	data, _, err := encodeFields(fields)
	if err != nil {
		return "", fmt.Errorf("fields for %s must encode to a JSON object: %w", collection, err)
	}

	record := Record{Collection: collection, ID: uuid.NewString(), Data: data}
	if err = s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}

	s.notifyWatchers(collection)
	return record.ID, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {

	res := s.db.WithContext(ctx).Delete(&Record{}, "collection = ? AND id = ?", collection, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	s.notifyWatchers(collection)
	return nil
}

// Find runs the query once. Without OrderBy documents come back in creation order.
func (s *Store) Find(ctx context.Context, q Query) ([]Document, error) {

	if err := q.Validate(); err != nil {
		return nil, err
	}

	var records []Record
	if err := s.db.WithContext(ctx).
		Where("collection = ?", q.Collection).
		Order("rowid").
		Find(&records).Error; err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(records))
	for _, record := range records {
		doc, err := newDocument(record)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", record.Collection, record.ID, err)
		}
		if q.Matches(doc) {
			docs = append(docs, doc)
		}
	}

	if q.OrderBy != "" {
		sortDocuments(docs, q.OrderBy, q.Descending)
	}

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func sortDocuments(docs []Document, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		left, leftOk := docs[i].Field(field)
		right, rightOk := docs[j].Field(field)
		if !leftOk || !rightOk {
			// documents missing the field go first
			return !leftOk && rightOk
		}
		cmp, ok := compareValues(left, right)
		if !ok {
			return false
		}
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}
