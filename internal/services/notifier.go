package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/events"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

const pushTimeout = 10 * time.Second

type Sender interface {
	Name() string
	Send(ctx context.Context, token string, title string, body string) error
}

type notificationWriter interface {
	Add(ctx context.Context, notification entities.Notification) (string, error)
}

type pushTokenReader interface {
	Get(ctx context.Context, uid string) (string, error)
}

// LogSender is used when no push transport is configured.
type LogSender struct{}

func (LogSender) Name() string {
	return "log"
}

func (LogSender) Send(_ context.Context, token string, title string, body string) error {
	log.WithField("token", token).Infof("push: %s: %s", title, body)
	return nil
}

// Notifier turns domain events into stored notifications and push messages.
// Delivery is fire-and-forget: failures are logged and never reach the publisher.
type Notifier struct {
	bus           EventBus.Bus
	notifications notificationWriter
	tokens        pushTokenReader
	sender        Sender
	now           func() time.Time

	onStatusChanged func(events.ApplicationStatusChanged)
	onResetRequest  func(events.PasswordResetRequested)
	onJobPosted     func(events.JobPosted)
}

func NewNotifier(bus EventBus.Bus, notifications notificationWriter, tokens pushTokenReader, sender Sender) (*Notifier, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if sender == nil {
		sender = LogSender{}
	}

	n := &Notifier{bus: bus, notifications: notifications, tokens: tokens, sender: sender, now: time.Now}
	n.onStatusChanged = n.statusChanged
	n.onResetRequest = n.resetRequested
	n.onJobPosted = n.jobPosted

	if err := bus.SubscribeAsync(events.ApplicationStatusChangedTopic, n.onStatusChanged, false); err != nil {
		return nil, err
	}
	if err := bus.SubscribeAsync(events.PasswordResetRequestedTopic, n.onResetRequest, false); err != nil {
		_ = bus.Unsubscribe(events.ApplicationStatusChangedTopic, n.onStatusChanged)
		return nil, err
	}
	if err := bus.SubscribeAsync(events.JobPostedTopic, n.onJobPosted, false); err != nil {
		_ = bus.Unsubscribe(events.ApplicationStatusChangedTopic, n.onStatusChanged)
		_ = bus.Unsubscribe(events.PasswordResetRequestedTopic, n.onResetRequest)
		return nil, err
	}

	log.Infof("notifier started, sender: %s", sender.Name())
	return n, nil
}

// Stop unsubscribes and waits for deliveries already in flight.
func (n *Notifier) Stop() {
	_ = n.bus.Unsubscribe(events.ApplicationStatusChangedTopic, n.onStatusChanged)
	_ = n.bus.Unsubscribe(events.PasswordResetRequestedTopic, n.onResetRequest)
	_ = n.bus.Unsubscribe(events.JobPostedTopic, n.onJobPosted)
	n.bus.WaitAsync()
}

func (n *Notifier) statusChanged(event events.ApplicationStatusChanged) {

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	application := event.Application
	if application.ApplicantUID == "" {
		log.Warnf("application %s has no applicant uid, notification skipped", application.ID)
		return
	}

	title := "Application update"
	message := fmt.Sprintf("Your application for %s is now %s", event.JobTitle, application.Status)

	_, err := n.notifications.Add(ctx, entities.Notification{
		RecipientUID: application.ApplicantUID,
		Title:        title,
		Message:      message,
		CreatedAt:    n.now().UTC(),
	})
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to store notification: %v", err)
	}

	n.push(ctx, application.ApplicantUID, title, message)
}

func (n *Notifier) resetRequested(event events.PasswordResetRequested) {

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	n.push(ctx, event.UID, "Password reset", fmt.Sprintf("Your password reset code: %s", event.Token))
}

// jobPosted confirms the posting to the employer's device.
func (n *Notifier) jobPosted(event events.JobPosted) {

	if event.OwnerUID == "" {
		log.Warnf("job %s has no owner uid, confirmation skipped", event.Job.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	n.push(ctx, event.OwnerUID, "Job posted", fmt.Sprintf("%s at %s is now visible to job seekers", event.Job.Title, event.Job.Company))
}

func (n *Notifier) push(ctx context.Context, uid, title, body string) {

	token, err := n.tokens.Get(ctx, uid)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to read push token of %s: %v", uid, err)
		return
	}
	if token == "" {
		log.Debugf("no push token registered for %s", uid)
		return
	}

	if err = n.sender.Send(ctx, token, title, body); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypePush).Errorf("push to %s failed: %v", uid, err)
		return
	}
	metrics.NotificationsSentCounter.WithLabelValues(n.sender.Name()).Inc()
}
