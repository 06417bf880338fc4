package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/clients/geocoding"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/events"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

var ErrNotOwner = errors.New("record is owned by another account")

type jobRepository interface {
	Get(ctx context.Context, id string) (*entities.JobPosting, error)
	Add(ctx context.Context, job entities.JobPosting) (string, error)
	Replace(ctx context.Context, job entities.JobPosting) error
	Remove(ctx context.Context, id string) error
}

type geocoder interface {
	Geocode(ctx context.Context, address string) (geocoding.Location, error)
	Autocomplete(ctx context.Context, input string) ([]geocoding.Prediction, error)
}

type JobService struct {
	jobs     jobRepository
	geocoder geocoder
	relation repositories.OwnerRelation
	bus      EventBus.Bus
	now      func() time.Time
}

func NewJobService(jobs jobRepository, geocoder geocoder, relation repositories.OwnerRelation, bus EventBus.Bus) *JobService {
	return &JobService{jobs: jobs, geocoder: geocoder, relation: relation, bus: bus, now: time.Now}
}

// Post stores a new job owned by the employer and announces it on the bus.
func (s *JobService) Post(ctx context.Context, owner entities.Identity, job entities.JobPosting) (string, error) {

	job.ID = ""
	job.CreatedBy = s.relation.OwnerKey(owner)
	job.CreatedAt = s.now().UTC()
	s.locate(ctx, &job)

	if err := entities.Validate(job); err != nil {
		return "", err
	}

	id, err := s.jobs.Add(ctx, job)
	if err != nil {
		return "", errors.Wrap(err, "failed to post job")
	}
	job.ID = id

	log.Infof("job %s posted by %s", id, job.CreatedBy)
	s.bus.Publish(events.JobPostedTopic, events.JobPosted{Job: job, OwnerUID: owner.UID})
	return id, nil
}

// Edit replaces a job's content. Ownership and creation stamp are preserved.
func (s *JobService) Edit(ctx context.Context, owner entities.Identity, job entities.JobPosting) error {

	existing, err := s.owned(ctx, owner, job.ID)
	if err != nil {
		return err
	}

	job.CreatedBy = existing.CreatedBy
	job.CreatedAt = existing.CreatedAt
	if !strings.EqualFold(strings.TrimSpace(job.Location), strings.TrimSpace(existing.Location)) && job.HasCoordinates() &&
		job.Latitude == existing.Latitude && job.Longitude == existing.Longitude {
		// stale coordinates of the previous location
		job.Latitude, job.Longitude = 0, 0
	}
	s.locate(ctx, &job)

	if err = entities.Validate(job); err != nil {
		return err
	}
	return errors.Wrapf(s.jobs.Replace(ctx, job), "failed to edit job %s", job.ID)
}

func (s *JobService) Delete(ctx context.Context, owner entities.Identity, id string) error {

	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	return errors.Wrapf(s.jobs.Remove(ctx, id), "failed to delete job %s", id)
}

func (s *JobService) Get(ctx context.Context, id string) (*entities.JobPosting, error) {
	return s.jobs.Get(ctx, id)
}

// SuggestLocations completes the location typed into the job form.
func (s *JobService) SuggestLocations(ctx context.Context, input string) ([]geocoding.Prediction, error) {

	if s.geocoder == nil || strings.TrimSpace(input) == "" {
		return nil, nil
	}
	predictions, err := s.geocoder.Autocomplete(ctx, input)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to suggest locations for %q", input)
	}
	return predictions, nil
}

func (s *JobService) owned(ctx context.Context, owner entities.Identity, id string) (*entities.JobPosting, error) {

	existing, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.relation.Owns(owner, existing.CreatedBy) {
		return nil, ErrNotOwner
	}
	return existing, nil
}

// locate fills coordinates and province from the geocoder. A job that cannot be
// geocoded is still stored, it only drops out of radius searches.
func (s *JobService) locate(ctx context.Context, job *entities.JobPosting) {

	if s.geocoder == nil || job.HasCoordinates() || strings.TrimSpace(job.Location) == "" {
		return
	}

	location, err := s.geocoder.Geocode(ctx, job.Location)
	if err != nil {
		if !errors.Is(err, geocoding.ErrNoResults) {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGeocoding).
				Errorf("failed to geocode %q: %v", job.Location, err)
		}
		return
	}

	job.Latitude = location.Lat
	job.Longitude = location.Lng
	if !job.Province.IsValid() && location.Province.IsValid() {
		job.Province = location.Province
	}
}
