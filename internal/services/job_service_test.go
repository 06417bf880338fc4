package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/clients/geocoding"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/events"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"testing"
)

func Test_Post_WhenCoordinatesMissing_ShouldGeocodeStampOwnerAndPublish(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("Add", mock.Anything, mock.MatchedBy(func(job entities.JobPosting) bool {
		return job.CreatedBy == "boss@acme.io" && job.Latitude == 43.65 && job.Longitude == -79.38 && !job.CreatedAt.IsZero()
	})).Return("job-1", nil).Once()

	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, "Toronto, ON").
		Return(geocoding.Location{Lat: 43.65, Lng: -79.38, Province: entities.Ontario}, nil).Once()

	bus := EventBus.New()
	var posted []events.JobPosted
	assert.NoError(bus.Subscribe(events.JobPostedTopic, func(e events.JobPosted) { posted = append(posted, e) }))

	service := NewJobService(jobs, geocoder, repositories.EmailRelation{}, bus)
	id, err := service.Post(context.Background(), employer, validJob())

	assert.NoError(err)
	assert.Equal("job-1", id)
	if assert.Len(posted, 1) {
		assert.Equal("job-1", posted[0].Job.ID)
		assert.Equal("employer-1", posted[0].OwnerUID)
	}
	jobs.AssertExpectations(t)
	geocoder.AssertExpectations(t)
}

func Test_Post_WhenGeocodingFails_ShouldStoreWithoutCoordinates(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("Add", mock.Anything, mock.MatchedBy(func(job entities.JobPosting) bool {
		return !job.HasCoordinates()
	})).Return("job-1", nil).Once()

	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, mock.Anything).
		Return(geocoding.Location{}, errors.New("network down")).Once()

	service := NewJobService(jobs, geocoder, repositories.EmailRelation{}, EventBus.New())
	_, err := service.Post(context.Background(), employer, validJob())

	assert.NoError(err)
	jobs.AssertExpectations(t)
}

func Test_Post_WhenFormInvalid_ShouldNotStore(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	job := validJob()
	job.Title = ""
	job.Latitude, job.Longitude = 1, 1

	service := NewJobService(jobs, nil, repositories.EmailRelation{}, EventBus.New())
	_, err := service.Post(context.Background(), employer, job)

	var validationErr *entities.ValidationError
	assert.ErrorAs(err, &validationErr)
	assert.Equal("title", validationErr.Field)
	jobs.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func Test_Post_WhenSalaryNegative_ShouldNotStore(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	job := validJob()
	job.Salary = entities.NewSalary(-50000)
	job.Latitude, job.Longitude = 1, 1

	service := NewJobService(jobs, nil, repositories.EmailRelation{}, EventBus.New())
	_, err := service.Post(context.Background(), employer, job)

	var validationErr *entities.ValidationError
	if assert.ErrorAs(err, &validationErr) {
		assert.Equal("salary", validationErr.Field)
	}
	jobs.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func Test_SuggestLocations_ShouldReturnGeocoderPredictions(t *testing.T) {

	assert := assert.New(t)

	geocoder := &mockGeocoder{}
	geocoder.On("Autocomplete", mock.Anything, "Toro").
		Return([]geocoding.Prediction{{Description: "Toronto, ON, Canada", PlaceID: "p1"}}, nil).Once()
	geocoder.On("Autocomplete", mock.Anything, "Mont").
		Return(nil, errors.New("quota exceeded")).Once()

	service := NewJobService(&mockJobs{}, geocoder, repositories.EmailRelation{}, EventBus.New())

	predictions, err := service.SuggestLocations(context.Background(), "Toro")
	assert.NoError(err)
	if assert.Len(predictions, 1) {
		assert.Equal("Toronto, ON, Canada", predictions[0].Description)
	}

	_, err = service.SuggestLocations(context.Background(), "Mont")
	assert.ErrorContains(err, "quota exceeded")

	predictions, err = service.SuggestLocations(context.Background(), "  ")
	assert.NoError(err)
	assert.Empty(predictions)
	geocoder.AssertExpectations(t)
}

func Test_Edit_WhenNotOwner_ShouldReturnErrNotOwner(t *testing.T) {

	assert := assert.New(t)

	existing := validJob()
	existing.ID = "job-1"
	existing.CreatedBy = "someone@else.io"

	jobs := &mockJobs{}
	jobs.On("Get", mock.Anything, "job-1").Return(&existing, nil)

	service := NewJobService(jobs, nil, repositories.EmailRelation{}, EventBus.New())

	edited := existing
	edited.Title = "Senior Go developer"
	assert.ErrorIs(service.Edit(context.Background(), employer, edited), ErrNotOwner)
	assert.ErrorIs(service.Delete(context.Background(), employer, "job-1"), ErrNotOwner)
	jobs.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
	jobs.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func Test_Edit_WhenOwner_ShouldKeepCreationStamp(t *testing.T) {

	assert := assert.New(t)

	existing := validJob()
	existing.ID = "job-1"
	existing.CreatedBy = "boss@acme.io"
	existing.Latitude, existing.Longitude = 43.65, -79.38

	jobs := &mockJobs{}
	jobs.On("Get", mock.Anything, "job-1").Return(&existing, nil)
	jobs.On("Replace", mock.Anything, mock.MatchedBy(func(job entities.JobPosting) bool {
		return job.CreatedBy == "boss@acme.io" && job.Title == "Senior Go developer"
	})).Return(nil).Once()
	jobs.On("Remove", mock.Anything, "job-1").Return(nil).Once()

	service := NewJobService(jobs, nil, repositories.EmailRelation{}, EventBus.New())

	edited := existing
	edited.Title = "Senior Go developer"
	edited.CreatedBy = "hijack@evil.io"
	assert.NoError(service.Edit(context.Background(), employer, edited))
	assert.NoError(service.Delete(context.Background(), employer, "job-1"))
	jobs.AssertExpectations(t)
}
