package services

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/clients/geocoding"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/stretchr/testify/mock"
	"time"
)

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) Get(ctx context.Context, id string) (*entities.JobPosting, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*entities.JobPosting)
	return job, args.Error(1)
}

func (m *mockJobs) Add(ctx context.Context, job entities.JobPosting) (string, error) {
	args := m.Called(ctx, job)
	return args.String(0), args.Error(1)
}

func (m *mockJobs) Replace(ctx context.Context, job entities.JobPosting) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobs) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (geocoding.Location, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(geocoding.Location), args.Error(1)
}

func (m *mockGeocoder) Autocomplete(ctx context.Context, input string) ([]geocoding.Prediction, error) {
	args := m.Called(ctx, input)
	predictions, _ := args.Get(0).([]geocoding.Prediction)
	return predictions, args.Error(1)
}

type mockApplications struct {
	mock.Mock
}

func (m *mockApplications) Get(ctx context.Context, id string) (*entities.Application, error) {
	args := m.Called(ctx, id)
	application, _ := args.Get(0).(*entities.Application)
	return application, args.Error(1)
}

func (m *mockApplications) Add(ctx context.Context, application entities.Application) (string, error) {
	args := m.Called(ctx, application)
	return args.String(0), args.Error(1)
}

func (m *mockApplications) UpdateStatus(ctx context.Context, id string, status entities.ApplicationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockApplications) Find(ctx context.Context, q docstore.Query) ([]entities.Application, error) {
	args := m.Called(ctx, q)
	applications, _ := args.Get(0).([]entities.Application)
	return applications, args.Error(1)
}

type mockBlobs struct {
	mock.Mock
}

func (m *mockBlobs) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, path, contentType, data)
	return args.String(0), args.Error(1)
}

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) SignUp(ctx context.Context, email, password string) (*entities.Identity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(*entities.Identity)
	return identity, args.Error(1)
}

func (m *mockAccounts) DeleteAccount(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) Save(ctx context.Context, profile entities.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfiles) Update(ctx context.Context, uid string, fields map[string]any) error {
	return m.Called(ctx, uid, fields).Error(0)
}

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockNotifications struct {
	mock.Mock
}

func (m *mockNotifications) Add(ctx context.Context, notification entities.Notification) (string, error) {
	args := m.Called(ctx, notification)
	return args.String(0), args.Error(1)
}

func (m *mockNotifications) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) Get(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Name() string {
	return "mock"
}

func (m *mockSender) Send(ctx context.Context, token string, title string, body string) error {
	return m.Called(ctx, token, title, body).Error(0)
}

var employer = entities.Identity{UID: "employer-1", Email: "Boss@Acme.io"}

func validJob() entities.JobPosting {
	return entities.JobPosting{
		Title:    "Go developer",
		Company:  "Acme",
		Location: "Toronto, ON",
		Province: entities.Ontario,
		Type:     entities.FullTime,
		Salary:   entities.NewSalary(90000),
	}
}
