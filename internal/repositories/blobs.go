package repositories

import (
	"context"
	"github.com/google/uuid"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"net/url"
	"strings"
)

var ErrBlobNotFound = errors.New("blob not found")

// Blobs stores uploaded files (photos, resumes). Uploading to an existing path replaces its content.
type Blobs struct {
	db      *gorm.DB
	baseURL string
}

func NewBlobsRepository(db *gorm.DB, baseURL string) *Blobs {
	return &Blobs{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

func (repo *Blobs) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {

	path = strings.Trim(path, "/")
	if path == "" {
		return "", errors.New("blob path is empty")
	}

	blob := entities.Blob{Ref: uuid.NewString(), Path: path, ContentType: contentType, Data: data}
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_type", "data"}),
	}).Create(&blob).Error
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload %s", path)
	}

	// on conflict the row keeps its original ref
	stored := entities.Blob{}
	if err = repo.db.WithContext(ctx).Select("ref").First(&stored, "path = ?", path).Error; err != nil {
		return "", err
	}
	return stored.Ref, nil
}

func (repo *Blobs) DownloadURL(ctx context.Context, ref string) (string, error) {
	blob := entities.Blob{}
	err := repo.db.WithContext(ctx).Select("path").First(&blob, "ref = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrBlobNotFound
	}
	if err != nil {
		return "", err
	}

	segments := strings.Split(blob.Path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return repo.baseURL + "/" + strings.Join(segments, "/"), nil
}

func (repo *Blobs) Load(ctx context.Context, ref string) (*entities.Blob, error) {
	blob := &entities.Blob{}
	err := repo.db.WithContext(ctx).First(blob, "ref = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}
