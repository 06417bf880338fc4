package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
)

type Jobs struct {
	store *docstore.Store
}

func NewJobsRepository(store *docstore.Store) *Jobs {
	return &Jobs{store: store}
}

func (repo *Jobs) Get(ctx context.Context, id string) (*entities.JobPosting, error) {
	doc, err := repo.store.Get(ctx, JobsCollection, id)
	if err != nil {
		return nil, err
	}
	job, err := DecodeJob(*doc)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) Add(ctx context.Context, job entities.JobPosting) (string, error) {
	return repo.store.Add(ctx, JobsCollection, job)
}

func (repo *Jobs) Replace(ctx context.Context, job entities.JobPosting) error {
	return repo.store.Set(ctx, JobsCollection, job.ID, job)
}

func (repo *Jobs) Remove(ctx context.Context, id string) error {
	return repo.store.Delete(ctx, JobsCollection, id)
}

func (repo *Jobs) Find(ctx context.Context, q docstore.Query) ([]entities.JobPosting, error) {
	docs, err := repo.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return DecodeJobs(docs)
}

// TitlePrefixQuery matches titles in [prefix, prefix+sentinel). An empty prefix matches every job.
func TitlePrefixQuery(prefix string) docstore.Query {
	q := docstore.Collection(JobsCollection)
	if prefix == "" {
		return q
	}
	return q.WithPrefix("title", prefix)
}

func DecodeJob(doc docstore.Document) (entities.JobPosting, error) {
	var job entities.JobPosting
	if err := doc.DataTo(&job); err != nil {
		return job, errors.Wrapf(err, "malformed job %s", doc.ID)
	}
	job.ID = doc.ID
	return job, nil
}

func DecodeJobs(docs []docstore.Document) ([]entities.JobPosting, error) {
	jobs := make([]entities.JobPosting, 0, len(docs))
	for _, doc := range docs {
		job, err := DecodeJob(doc)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
