package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
)

type Profiles struct {
	store *docstore.Store
}

func NewProfilesRepository(store *docstore.Store) *Profiles {
	return &Profiles{store: store}
}

// Get returns docstore.ErrNotFound when no profile is stored for uid.
func (repo *Profiles) Get(ctx context.Context, uid string) (*entities.Profile, error) {

	doc, err := repo.store.Get(ctx, UsersCollection, uid)
	if err != nil {
		return nil, err
	}

	profile := &entities.Profile{}
	if err = doc.DataTo(profile); err != nil {
		return nil, errors.Wrapf(err, "malformed profile %s", uid)
	}
	profile.UID = doc.ID
	return profile, nil
}

func (repo *Profiles) Save(ctx context.Context, profile entities.Profile) error {
	return repo.store.Set(ctx, UsersCollection, profile.UID, profile)
}

func (repo *Profiles) Update(ctx context.Context, uid string, fields map[string]any) error {
	return repo.store.Update(ctx, UsersCollection, uid, fields)
}

func (repo *Profiles) Remove(ctx context.Context, uid string) error {
	err := repo.store.Delete(ctx, UsersCollection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}
