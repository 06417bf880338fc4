package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
	"time"
)

type Notifications struct {
	store *docstore.Store
}

func NewNotificationsRepository(store *docstore.Store) *Notifications {
	return &Notifications{store: store}
}

func (repo *Notifications) Add(ctx context.Context, notification entities.Notification) (string, error) {
	return repo.store.Add(ctx, NotificationsCollection, notification)
}

func (repo *Notifications) MarkRead(ctx context.Context, id string) error {
	return repo.store.Update(ctx, NotificationsCollection, id, map[string]any{"read": true})
}

// RemoveOlderThan deletes notifications created before cutoff and returns how many were removed.
func (repo *Notifications) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error) {

	docs, err := repo.store.Find(ctx, docstore.Collection(NotificationsCollection))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, doc := range docs {
		notification, err := DecodeNotification(doc)
		if err != nil {
			return removed, err
		}
		if !notification.CreatedAt.Before(cutoff) {
			continue
		}
		if err = repo.store.Delete(ctx, NotificationsCollection, doc.ID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func ForRecipientQuery(uid string) docstore.Query {
	return docstore.Collection(NotificationsCollection).
		Where("recipientUid", docstore.Equal, uid).
		Order("createdAt", true)
}

func DecodeNotification(doc docstore.Document) (entities.Notification, error) {
	var notification entities.Notification
	if err := doc.DataTo(&notification); err != nil {
		return notification, errors.Wrapf(err, "malformed notification %s", doc.ID)
	}
	notification.ID = doc.ID
	return notification, nil
}

func DecodeNotifications(docs []docstore.Document) ([]entities.Notification, error) {
	notifications := make([]entities.Notification, 0, len(docs))
	for _, doc := range docs {
		notification, err := DecodeNotification(doc)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}
