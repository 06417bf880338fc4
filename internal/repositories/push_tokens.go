package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/pkg/errors"
	"time"
)

type PushTokens struct {
	store *docstore.Store
}

func NewPushTokensRepository(store *docstore.Store) *PushTokens {
	return &PushTokens{store: store}
}

func (repo *PushTokens) Register(ctx context.Context, uid, token string) error {
	return repo.store.Set(ctx, PushTokensCollection, uid, map[string]any{
		"token":     token,
		"updatedAt": time.Now().UTC(),
	})
}

// Get returns an empty token when uid never registered one.
func (repo *PushTokens) Get(ctx context.Context, uid string) (string, error) {
	doc, err := repo.store.Get(ctx, PushTokensCollection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	token, _ := doc.Data["token"].(string)
	return token, nil
}

func (repo *PushTokens) Remove(ctx context.Context, uid string) error {
	err := repo.store.Delete(ctx, PushTokensCollection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}
