package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/auth"
	"github.com/maxaizer/jobmarket/internal/clients/geocoding"
	"github.com/maxaizer/jobmarket/internal/clients/telegram"
	"github.com/maxaizer/jobmarket/internal/config"
	"github.com/maxaizer/jobmarket/internal/docstore"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/maxaizer/jobmarket/internal/navigation"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/maxaizer/jobmarket/internal/screens"
	"github.com/maxaizer/jobmarket/internal/services"
	"github.com/maxaizer/jobmarket/internal/session"
	log "github.com/sirupsen/logrus"
	"os/signal"
	"sync"
	"syscall"
)

type client struct {
	Session      *session.Store
	Auth         *auth.LocalProvider
	Router       *navigation.Router
	Jobs         *services.JobService
	Applications *services.ApplicationService
	Profiles     *services.ProfileService

	JobSearch        *screens.JobSearch
	AddedJobs        *screens.List[entities.JobPosting]
	ViewApplications *screens.List[entities.Application]
	MyApplications   *screens.List[entities.Application]
	Notifications    *screens.List[entities.Notification]
	CompanyAnalysis  *screens.CompanyAnalysis
}

func newClient(ctx context.Context, cfg *config.Config, dbContext *repositories.DbContext, store *docstore.Store,
	bus EventBus.Bus) (*client, error) {

	relation := repositories.EmailRelation{}
	blobs := repositories.NewBlobsRepository(dbContext.DB, cfg.Storage.BaseURL)
	jobs := repositories.NewJobsRepository(store)
	profiles := repositories.NewCachedProfiles(repositories.NewProfilesRepository(store), cfg.Session.ProfileCacheTTL)

	provider, err := auth.NewLocalProvider(ctx, dbContext.DB, repositories.NewDataRepository(dbContext.DB), bus)
	if err != nil {
		return nil, err
	}

	sessionStore, err := session.NewStore(provider, session.NewProfileLoader(profiles, cfg.Session))
	if err != nil {
		return nil, err
	}
	sessionStore.OnTransition(func(prev, next session.State) {
		metrics.SessionTransitionsCounter.WithLabelValues(string(prev.Status), string(next.Status)).Inc()
	})

	geocoder := geocoding.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, cfg.Geocoding.Country)
	geocoder.SetRateLimit(cfg.Geocoding.MaxRequestsPerSecond)

	c := &client{
		Session: sessionStore,
		Auth:    provider,
		Router: navigation.NewRouter(func(graph navigation.Graph) {
			log.Infof("navigation: %s graph, initial screen %q", graph.Name, graph.Initial)
		}),
		Jobs: services.NewJobService(jobs, geocoder, relation, bus),
		Applications: services.NewApplicationService(repositories.NewApplicationsRepository(store), jobs, blobs,
			relation, bus),
		Profiles: services.NewProfileService(provider, profiles, blobs),

		JobSearch:        screens.NewJobSearch(store),
		AddedJobs:        screens.NewAddedJobs(store, relation),
		ViewApplications: screens.NewViewApplications(store, relation),
		MyApplications:   screens.NewMyApplications(store),
		Notifications:    screens.NewNotifications(store),
		CompanyAnalysis:  screens.NewCompanyAnalysis(store, relation),
	}
	c.Profiles.SetSession(sessionStore)
	return c, nil
}

func runNotifications(cfg *config.Config, bus EventBus.Bus, store *docstore.Store) (func(), error) {

	var sender services.Sender = services.LogSender{}
	if cfg.Push.TelegramToken != "" {
		telegramSender, err := telegram.NewSender(cfg.Push.TelegramToken)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypePush).
				Errorf("can't create telegram sender, falling back to log: %v", err)
		} else {
			sender = telegramSender
		}
	}

	notifications := repositories.NewNotificationsRepository(store)
	notifier, err := services.NewNotifier(bus, notifications, repositories.NewPushTokensRepository(store), sender)
	if err != nil {
		return nil, err
	}

	cleaner, err := services.NewNotificationsCleaner(notifications, cfg.Notifications.RetentionDays,
		cfg.Notifications.CleanupSchedule)
	if err != nil {
		notifier.Stop()
		return nil, err
	}

	return func() {
		cleaner.Stop()
		notifier.Stop()
	}, nil
}

// runScreens starts every session-driven component on its own watch channel.
func runScreens(ctx context.Context, c *client, wg *sync.WaitGroup) {

	type runner interface {
		Run(ctx context.Context, states <-chan session.State) error
	}

	runners := map[string]runner{
		"router":            c.Router,
		"job_search":        c.JobSearch,
		"added_jobs":        c.AddedJobs,
		"view_applications": c.ViewApplications,
		"my_applications":   c.MyApplications,
		"notifications":     c.Notifications,
		"company_analysis":  c.CompanyAnalysis,
	}

	for name, r := range runners {
		states, cancel := c.Session.Watch()
		wg.Add(1)
		go func(name string, r runner) {
			defer wg.Done()
			defer cancel()
			if err := r.Run(ctx, states); err != nil && ctx.Err() == nil {
				log.Errorf("%s stopped: %v", name, err)
			}
		}(name, r)
	}
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("can't load config: %v", err)
	}

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Metrics.Port)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	store := docstore.NewStore(dbContext.DB)
	defer store.Close()

	bus := EventBus.New()
	c, err := newClient(ctx, cfg, dbContext, store, bus)
	if err != nil {
		log.Fatalf("can't create client: %v", err)
	}

	stopNotifications, err := runNotifications(cfg, bus, store)
	if err != nil {
		log.Fatalf("can't start notifications: %v", err)
	}

	var wg sync.WaitGroup
	runScreens(ctx, c, &wg)

	dispose, err := c.Session.Start()
	if err != nil {
		log.Fatalf("can't start session: %v", err)
	}

	<-ctx.Done()

	log.Info("Shutting down services...")
	dispose()
	wg.Wait()
	stopNotifications()
	log.Info("Services stopped.")
}
