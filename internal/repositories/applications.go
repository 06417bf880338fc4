package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
)

type Applications struct {
	store *docstore.Store
}

func NewApplicationsRepository(store *docstore.Store) *Applications {
	return &Applications{store: store}
}

func (repo *Applications) Get(ctx context.Context, id string) (*entities.Application, error) {
	doc, err := repo.store.Get(ctx, ApplicationsCollection, id)
	if err != nil {
		return nil, err
	}
	application, err := DecodeApplication(*doc)
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (repo *Applications) Add(ctx context.Context, application entities.Application) (string, error) {
	return repo.store.Add(ctx, ApplicationsCollection, application)
}

func (repo *Applications) UpdateStatus(ctx context.Context, id string, status entities.ApplicationStatus) error {
	return repo.store.Update(ctx, ApplicationsCollection, id, map[string]any{"status": status})
}

func (repo *Applications) Find(ctx context.Context, q docstore.Query) ([]entities.Application, error) {
	docs, err := repo.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return DecodeApplications(docs)
}

func ForJobQuery(jobID string) docstore.Query {
	return docstore.Collection(ApplicationsCollection).Where("jobId", docstore.Equal, jobID)
}

func ByApplicantQuery(uid string) docstore.Query {
	return docstore.Collection(ApplicationsCollection).Where("applicantUid", docstore.Equal, uid)
}

func DecodeApplication(doc docstore.Document) (entities.Application, error) {
	var application entities.Application
	if err := doc.DataTo(&application); err != nil {
		return application, errors.Wrapf(err, "malformed application %s", doc.ID)
	}
	application.ID = doc.ID
	return application, nil
}

func DecodeApplications(docs []docstore.Document) ([]entities.Application, error) {
	applications := make([]entities.Application, 0, len(docs))
	for _, doc := range docs {
		application, err := DecodeApplication(doc)
		if err != nil {
			return nil, err
		}
		applications = append(applications, application)
	}
	return applications, nil
}
