package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/events"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"path"
	"time"
)

var ErrAlreadyApplied = errors.New("already applied to this job")

type applicationRepository interface {
	Get(ctx context.Context, id string) (*entities.Application, error)
	Add(ctx context.Context, application entities.Application) (string, error)
	UpdateStatus(ctx context.Context, id string, status entities.ApplicationStatus) error
	Find(ctx context.Context, q docstore.Query) ([]entities.Application, error)
}

type jobReader interface {
	Get(ctx context.Context, id string) (*entities.JobPosting, error)
}

type blobUploader interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

type Resume struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ApplicationService struct {
	applications applicationRepository
	jobs         jobReader
	blobs        blobUploader
	relation     repositories.OwnerRelation
	bus          EventBus.Bus
	now          func() time.Time
}

func NewApplicationService(applications applicationRepository, jobs jobReader, blobs blobUploader,
	relation repositories.OwnerRelation, bus EventBus.Bus) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		jobs:         jobs,
		blobs:        blobs,
		relation:     relation,
		bus:          bus,
		now:          time.Now,
	}
}

// Apply submits the applicant's form for a job. The application inherits the
// job's owner so the employer sees it in their lists.
func (s *ApplicationService) Apply(ctx context.Context, applicant entities.Identity, form entities.Application,
	resume *Resume) (string, error) {

	job, err := s.jobs.Get(ctx, form.JobID)
	if err != nil {
		return "", errors.Wrapf(err, "failed to load job %s", form.JobID)
	}

	form.ID = ""
	form.ApplicantUID = applicant.UID
	form.Position = job.Title
	form.Status = entities.StatusApplied
	form.CreatedBy = job.CreatedBy
	form.CreatedAt = s.now().UTC()
	if form.ApplicantEmail == "" {
		form.ApplicantEmail = entities.NormalizeEmail(applicant.Email)
	}

	if err = entities.Validate(form); err != nil {
		return "", err
	}

	previous, err := s.applications.Find(ctx, repositories.ByApplicantQuery(applicant.UID))
	if err != nil {
		return "", errors.Wrap(err, "failed to check previous applications")
	}
	if lo.ContainsBy(previous, func(a entities.Application) bool { return a.JobID == form.JobID }) {
		return "", ErrAlreadyApplied
	}

	if resume != nil && len(resume.Data) > 0 {
		name := path.Base(resume.FileName)
		if name == "." || name == "/" {
			name = "resume"
		}
		ref, err := s.blobs.Upload(ctx, fmt.Sprintf("resumes/%s/%s/%s", applicant.UID, form.JobID, name),
			resume.ContentType, resume.Data)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeStorage).Errorf("resume upload failed: %v", err)
			return "", errors.Wrap(err, "failed to upload resume")
		}
		form.ResumeRef = ref
	}

	id, err := s.applications.Add(ctx, form)
	if err != nil {
		return "", errors.Wrap(err, "failed to submit application")
	}
	log.Infof("application %s submitted for job %s", id, form.JobID)
	return id, nil
}

// ChangeStatus moves an application along its lifecycle. Only the owner of the job may do it.
func (s *ApplicationService) ChangeStatus(ctx context.Context, owner entities.Identity, id string,
	status entities.ApplicationStatus) error {

	application, err := s.applications.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.relation.Owns(owner, application.CreatedBy) {
		return ErrNotOwner
	}
	if !application.Status.CanTransitionTo(status) {
		return errors.Wrapf(entities.ErrInvalidTransition, "%s -> %s", application.Status, status)
	}

	if err = s.applications.UpdateStatus(ctx, id, status); err != nil {
		return errors.Wrapf(err, "failed to update status of application %s", id)
	}

	previous := application.Status
	application.Status = status
	s.bus.Publish(events.ApplicationStatusChangedTopic, events.ApplicationStatusChanged{
		Application: *application,
		Previous:    previous,
		JobTitle:    application.Position,
	})
	return nil
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*entities.Application, error) {
	return s.applications.Get(ctx, id)
}
