package auth

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/events"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"sync"
	"time"
)

const (
	currentIdentityKey = "auth.current_identity"
	minPasswordLength  = 6
	resetTokenTTL      = time.Hour
)

type dataRepository interface {
	SaveJSON(ctx context.Context, id string, value any) error
	LoadJSON(ctx context.Context, id string, value any) (bool, error)
	Remove(ctx context.Context, id string) error
}

type credentialsForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type listenerEntry struct {
	id       uint64
	listener func(*entities.Identity)
}

// LocalProvider keeps bcrypt credentials in the database and remembers the signed-in identity across restarts.
// Listeners are called one at a time in registration order and must not call back into the provider.
type LocalProvider struct {
	db   *gorm.DB
	data dataRepository
	bus  EventBus.Bus
	now  func() time.Time

	mu             sync.Mutex
	current        *entities.Identity
	listeners      []listenerEntry
	nextListenerID uint64

	emitMu sync.Mutex
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(ctx context.Context, db *gorm.DB, data dataRepository, bus EventBus.Bus) (*LocalProvider, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	p := &LocalProvider{db: db, data: data, bus: bus, now: time.Now}

	var identity entities.Identity
	found, err := data.LoadJSON(ctx, currentIdentityKey, &identity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to restore signed-in identity")
	}
	if found && identity.UID != "" {
		p.current = &identity
		log.Debugf("restored signed-in identity %s", identity.UID)
	}
	return p, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*entities.Identity, error) {

	form := credentialsForm{Email: entities.NormalizeEmail(email), Password: password}
	if err := validateCredentials(form); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	credential := entities.Credential{UID: uuid.NewString(), Email: form.Email, PasswordHash: string(hash)}
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Credential{}).Where("email = ?", form.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return newAuthError(CodeEmailInUse, nil)
		}
		return tx.Create(&credential).Error
	})
	if err != nil {
		return nil, err
	}

	return &entities.Identity{UID: credential.UID, Email: credential.Email}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*entities.Identity, error) {

	credential := entities.Credential{}
	err := p.db.WithContext(ctx).First(&credential, "email = ?", entities.NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newAuthError(CodeInvalidCredentials, nil)
	}
	if err != nil {
		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		return nil, newAuthError(CodeInvalidCredentials, nil)
	}

	identity := &entities.Identity{UID: credential.UID, Email: credential.Email}
	if err = p.data.SaveJSON(ctx, currentIdentityKey, identity); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to persist identity: %v", err)
	}

	p.setCurrent(identity)
	return identity, nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	if err := p.data.Remove(ctx, currentIdentityKey); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to forget identity: %v", err)
	}
	p.setCurrent(nil)
	return nil
}

// SendPasswordReset does not reveal whether the email is registered.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {

	email = entities.NormalizeEmail(email)
	if err := entities.Validate(credentialsForm{Email: email, Password: "placeholder"}); err != nil {
		return newAuthError(CodeInvalidEmail, err)
	}

	credential := entities.Credential{}
	err := p.db.WithContext(ctx).First(&credential, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Debugf("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	reset := entities.PasswordReset{Token: uuid.NewString(), UID: credential.UID, ExpiresAt: p.now().Add(resetTokenTTL)}
	if err = p.db.WithContext(ctx).Create(&reset).Error; err != nil {
		return err
	}

	p.bus.Publish(events.PasswordResetRequestedTopic, events.PasswordResetRequested{
		UID:   credential.UID,
		Email: credential.Email,
		Token: reset.Token,
	})
	return nil
}

func (p *LocalProvider) ResetPassword(ctx context.Context, token, password string) error {

	if len(password) < minPasswordLength {
		return newAuthError(CodeWeakPassword, nil)
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reset := entities.PasswordReset{}
		err := tx.First(&reset, "token = ?", token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAuthError(CodeResetTokenInvalid, nil)
		}
		if err != nil {
			return err
		}
		if p.now().After(reset.ExpiresAt) {
			_ = tx.Delete(&reset).Error
			return newAuthError(CodeResetTokenInvalid, errors.New("token expired"))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err = tx.Model(&entities.Credential{}).Where("uid = ?", reset.UID).
			Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.PasswordReset{}, "uid = ?", reset.UID).Error
	})
}

// DeleteAccount removes the credentials of uid and signs it out if it is the current identity.
func (p *LocalProvider) DeleteAccount(ctx context.Context, uid string) error {

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entities.PasswordReset{}, "uid = ?", uid).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Credential{}, "uid = ?", uid).Error
	})
	if err != nil {
		return err
	}

	if current := p.Current(); current != nil && current.UID == uid {
		return p.SignOut(ctx)
	}
	return nil
}

func (p *LocalProvider) Current() *entities.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyIdentity(p.current)
}

func (p *LocalProvider) OnIdentityChange(listener func(*entities.Identity)) func() {

	p.emitMu.Lock()
	p.mu.Lock()
	p.nextListenerID++
	id := p.nextListenerID
	p.listeners = append(p.listeners, listenerEntry{id: id, listener: listener})
	current := copyIdentity(p.current)
	p.mu.Unlock()

	listener(current)
	p.emitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, entry := range p.listeners {
				if entry.id == id {
					p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (p *LocalProvider) setCurrent(identity *entities.Identity) {

	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	if p.current.SameAs(identity) && (identity == nil || p.current.Email == identity.Email) {
		p.mu.Unlock()
		return
	}
	p.current = copyIdentity(identity)
	listeners := make([]listenerEntry, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, entry := range listeners {
		entry.listener(copyIdentity(identity))
	}
}

func validateCredentials(form credentialsForm) error {
	err := entities.Validate(form)
	if err == nil {
		return nil
	}

	var validationErr *entities.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field == "password" {
		return newAuthError(CodeWeakPassword, err)
	}
	return newAuthError(CodeInvalidEmail, err)
}

func copyIdentity(identity *entities.Identity) *entities.Identity {
	if identity == nil {
		return nil
	}
	clone := *identity
	return &clone
}
