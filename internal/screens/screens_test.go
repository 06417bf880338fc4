package screens

import (
	"context"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/maxaizer/jobmarket/internal/services"
	"github.com/maxaizer/jobmarket/internal/session"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"path/filepath"
	"testing"
	"time"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newTestStore(t *testing.T) *docstore.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "screens.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err = db.AutoMigrate(&docstore.Record{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store := docstore.NewStore(db)
	t.Cleanup(func() {
		store.Close()
		_ = sqlDB.Close()
	})
	return store
}

type runner interface {
	Run(ctx context.Context, states <-chan session.State) error
}

// run starts the screen and returns the channel feeding it session states.
func run(t *testing.T, screen runner) chan<- session.State {
	t.Helper()
	states := make(chan session.State, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = screen.Run(ctx, states)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return states
}

func ready(uid, email string, role entities.Role) session.State {
	identity := entities.Identity{UID: uid, Email: email}
	return session.State{
		Identity: &identity,
		Profile:  entities.NewProfile(identity, uid, role),
		Status:   session.StatusReady,
	}
}

func add(t *testing.T, store *docstore.Store, collection string, fields any) string {
	t.Helper()
	id, err := store.Add(context.Background(), collection, fields)
	if err != nil {
		t.Fatalf("failed to add to %s: %v", collection, err)
	}
	return id
}

func job(title, owner string, jobType entities.JobType) entities.JobPosting {
	return entities.JobPosting{
		Title: title, Company: "Acme", Location: "Toronto", Province: entities.Ontario,
		Type: jobType, CreatedBy: owner, CreatedAt: time.Now().UTC(),
	}
}

func Test_AddedJobs_ShouldFollowEmployerAndClearOnSignOut(t *testing.T) {

	assert := assert.New(t)
	store := newTestStore(t)
	add(t, store, repositories.JobsCollection, job("Go developer", "boss@acme.io", entities.FullTime))
	add(t, store, repositories.JobsCollection, job("Designer", "other@acme.io", entities.FullTime))

	screen := NewAddedJobs(store, repositories.EmailRelation{})
	states := run(t, screen)

	states <- ready("e1", "Boss@Acme.io", entities.RoleEmployer)
	assert.Eventually(func() bool { return len(screen.Items()) == 1 }, waitFor, tick)
	assert.Equal("Go developer", screen.Items()[0].Title)
	assert.True(screen.Live())

	add(t, store, repositories.JobsCollection, job("Go lead", "boss@acme.io", entities.Contract))
	assert.Eventually(func() bool { return len(screen.Items()) == 2 }, waitFor, tick)

	states <- session.State{Status: session.StatusSignedOut}
	assert.Eventually(func() bool { return store.ActiveSubscriptions() == 0 }, waitFor, tick)
	assert.Empty(screen.Items())
}

func Test_AddedJobs_WhenEmployee_ShouldNotSubscribe(t *testing.T) {

	assert := assert.New(t)
	store := newTestStore(t)
	add(t, store, repositories.JobsCollection, job("Go developer", "worker@mail.io", entities.FullTime))

	screen := NewAddedJobs(store, repositories.EmailRelation{})
	states := run(t, screen)

	states <- ready("w1", "worker@mail.io", entities.RoleEmployee)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(0, store.ActiveSubscriptions())
	assert.Empty(screen.Items())
}

func Test_JobApplications_ShouldOnlyListOwnApplicationsOfJob(t *testing.T) {

	assert := assert.New(t)
	store := newTestStore(t)
	add(t, store, repositories.ApplicationsCollection, entities.Application{JobID: "j1", CreatedBy: "boss@acme.io", Status: entities.StatusApplied})
	add(t, store, repositories.ApplicationsCollection, entities.Application{JobID: "j2", CreatedBy: "boss@acme.io", Status: entities.StatusApplied})
	add(t, store, repositories.ApplicationsCollection, entities.Application{JobID: "j1", CreatedBy: "other@acme.io", Status: entities.StatusApplied})

	screen := NewJobApplications(store, repositories.EmailRelation{}, "j1")
	states := run(t, screen)

	states <- ready("e1", "boss@acme.io", entities.RoleEmployer)
	assert.Eventually(func() bool { return len(screen.Items()) == 1 }, waitFor, tick)
	assert.Equal("j1", screen.Items()[0].JobID)
}

func Test_Notifications_ShouldListOwnNewestFirst(t *testing.T) {

	assert := assert.New(t)
	store := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	add(t, store, repositories.NotificationsCollection, entities.Notification{RecipientUID: "w1", Title: "old", CreatedAt: base})
	add(t, store, repositories.NotificationsCollection, entities.Notification{RecipientUID: "w1", Title: "new", CreatedAt: base.Add(time.Hour)})
	add(t, store, repositories.NotificationsCollection, entities.Notification{RecipientUID: "w2", Title: "foreign", CreatedAt: base})

	screen := NewNotifications(store)
	states := run(t, screen)

	states <- ready("w1", "worker@mail.io", entities.RoleEmployee)
	assert.Eventually(func() bool { return len(screen.Items()) == 2 }, waitFor, tick)
	assert.Equal("new", screen.Items()[0].Title)
	assert.Equal("old", screen.Items()[1].Title)
}

func Test_JobSearch_ShouldCombinePrefixScopeWithCriteria(t *testing.T) {

	assert := assert.New(t)
	store := newTestStore(t)
	add(t, store, repositories.JobsCollection, job("Go developer", "boss@acme.io", entities.FullTime))
	add(t, store, repositories.JobsCollection, job("Go lead", "boss@acme.io", entities.PartTime))
	add(t, store, repositories.JobsCollection, job("Designer", "boss@acme.io", entities.PartTime))

	screen := NewJobSearch(store)
	states := run(t, screen)

	states <- ready("w1", "worker@mail.io", entities.RoleEmployee)
	assert.Eventually(func() bool { return len(screen.Results()) == 3 }, waitFor, tick)

	screen.Search("Go")
	assert.Eventually(func() bool { return len(screen.Results()) == 2 }, waitFor, tick)

	assert.NoError(screen.SetCriteria(filter.Criteria{JobType: entities.PartTime}))
	results := screen.Results()
	if assert.Len(results, 1) {
		assert.Equal("Go lead", results[0].Title)
	}

	assert.Error(screen.SetCriteria(filter.Criteria{JobType: "Gig"}))
	assert.Equal(entities.PartTime, screen.Criteria().JobType)
}

func Test_JobSearch_WhenPrefixChangesWhileSignedOut_ShouldStayClosed(t *testing.T) {

	assert := assert.New(t)
	store := newTestStore(t)
	add(t, store, repositories.JobsCollection, job("Go developer", "boss@acme.io", entities.FullTime))

	screen := NewJobSearch(store)
	states := run(t, screen)

	states <- session.State{Status: session.StatusSignedOut}
	screen.Search("Go")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(0, store.ActiveSubscriptions())
	assert.Empty(screen.Results())
}

func Test_CompanyAnalysis_ShouldAggregateLiveApplications(t *testing.T) {

	assert := assert.New(t)
	store := newTestStore(t)
	add(t, store, repositories.ApplicationsCollection, entities.Application{Position: "Go developer", CreatedBy: "boss@acme.io", Status: entities.StatusApplied})
	add(t, store, repositories.ApplicationsCollection, entities.Application{Position: "Go developer", CreatedBy: "boss@acme.io", Status: entities.StatusOffer})

	screen := NewCompanyAnalysis(store, repositories.EmailRelation{})
	states := run(t, screen)

	states <- ready("e1", "boss@acme.io", entities.RoleEmployer)
	assert.Eventually(func() bool { return screen.Analysis().Total == 2 }, waitFor, tick)
	assert.Equal([]services.Count{{Name: "Go developer", Count: 2}}, screen.Analysis().ByPosition)
}
