package auth

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/events"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/stretchr/testify/assert"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type providerFixture struct {
	provider *LocalProvider
	db       *repositories.DbContext
	bus      EventBus.Bus
}

func newProviderFixture(t *testing.T, file string) providerFixture {
	t.Helper()
	dbContext, err := repositories.NewDbContext(file)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err = dbContext.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = dbContext.Close() })

	bus := EventBus.New()
	provider, err := NewLocalProvider(context.Background(), dbContext.DB, repositories.NewDataRepository(dbContext.DB), bus)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return providerFixture{provider: provider, db: dbContext, bus: bus}
}

type identityRecorder struct {
	mu     sync.Mutex
	values []*entities.Identity
}

func (r *identityRecorder) record(identity *entities.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, identity)
}

func (r *identityRecorder) uids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	uids := make([]string, 0, len(r.values))
	for _, identity := range r.values {
		if identity == nil {
			uids = append(uids, "")
		} else {
			uids = append(uids, identity.UID)
		}
	}
	return uids
}

func Test_LocalProvider_SignUp_ShouldNotSignIn(t *testing.T) {
	assert := assert.New(t)
	fixture := newProviderFixture(t, filepath.Join(t.TempDir(), "auth.db"))
	recorder := &identityRecorder{}
	fixture.provider.OnIdentityChange(recorder.record)

	identity, err := fixture.provider.SignUp(context.Background(), " Emp@X.com", "secret1")

	assert.NoError(err)
	assert.NotEmpty(identity.UID)
	assert.Equal("emp@x.com", identity.Email)
	assert.Nil(fixture.provider.Current())
	assert.Equal([]string{""}, recorder.uids())
}

func Test_LocalProvider_SignUp_WhenInputInvalid_ShouldReturnAuthErrors(t *testing.T) {
	assert := assert.New(t)
	fixture := newProviderFixture(t, filepath.Join(t.TempDir(), "auth.db"))
	ctx := context.Background()

	_, err := fixture.provider.SignUp(ctx, "not-an-email", "secret1")
	assert.True(HasCode(err, CodeInvalidEmail))

	_, err = fixture.provider.SignUp(ctx, "a@x.com", "123")
	assert.True(HasCode(err, CodeWeakPassword))

	_, err = fixture.provider.SignUp(ctx, "a@x.com", "secret1")
	assert.NoError(err)
	_, err = fixture.provider.SignUp(ctx, "A@x.com", "secret2")
	assert.True(HasCode(err, CodeEmailInUse))
}

func Test_LocalProvider_SignInSignOut_ShouldNotifyListeners(t *testing.T) {
	assert := assert.New(t)
	fixture := newProviderFixture(t, filepath.Join(t.TempDir(), "auth.db"))
	ctx := context.Background()
	created, _ := fixture.provider.SignUp(ctx, "a@x.com", "secret1")

	recorder := &identityRecorder{}
	unsubscribe := fixture.provider.OnIdentityChange(recorder.record)

	_, err := fixture.provider.SignIn(ctx, "a@x.com", "wrong!!")
	assert.True(HasCode(err, CodeInvalidCredentials))

	identity, err := fixture.provider.SignIn(ctx, "A@X.COM", "secret1")
	assert.NoError(err)
	assert.Equal(created.UID, identity.UID)
	assert.NoError(fixture.provider.SignOut(ctx))

	unsubscribe()
	_, _ = fixture.provider.SignIn(ctx, "a@x.com", "secret1")

	assert.Equal([]string{"", created.UID, ""}, recorder.uids())
}

func Test_LocalProvider_WhenRestarted_ShouldRestoreSignedInIdentity(t *testing.T) {
	assert := assert.New(t)
	file := filepath.Join(t.TempDir(), "auth.db")
	first := newProviderFixture(t, file)
	ctx := context.Background()
	created, _ := first.provider.SignUp(ctx, "a@x.com", "secret1")
	_, _ = first.provider.SignIn(ctx, "a@x.com", "secret1")
	_ = first.db.Close()

	second := newProviderFixture(t, file)
	recorder := &identityRecorder{}
	second.provider.OnIdentityChange(recorder.record)

	assert.Equal([]string{created.UID}, recorder.uids())
}

func Test_LocalProvider_PasswordReset_ShouldPublishTokenAndAcceptNewPassword(t *testing.T) {
	assert := assert.New(t)
	fixture := newProviderFixture(t, filepath.Join(t.TempDir(), "auth.db"))
	ctx := context.Background()
	_, _ = fixture.provider.SignUp(ctx, "a@x.com", "secret1")

	tokens := make(chan string, 1)
	_ = fixture.bus.Subscribe(events.PasswordResetRequestedTopic, func(event events.PasswordResetRequested) {
		tokens <- event.Token
	})

	assert.NoError(fixture.provider.SendPasswordReset(ctx, "a@x.com"))
	assert.NoError(fixture.provider.SendPasswordReset(ctx, "nobody@x.com"))
	assert.True(HasCode(fixture.provider.SendPasswordReset(ctx, "broken"), CodeInvalidEmail))

	var token string
	select {
	case token = <-tokens:
	case <-time.After(time.Second):
		t.Fatal("reset event was not published")
	}

	assert.True(HasCode(fixture.provider.ResetPassword(ctx, token, "x"), CodeWeakPassword))
	assert.NoError(fixture.provider.ResetPassword(ctx, token, "newsecret"))
	assert.True(HasCode(fixture.provider.ResetPassword(ctx, token, "another1"), CodeResetTokenInvalid))

	_, err := fixture.provider.SignIn(ctx, "a@x.com", "secret1")
	assert.True(HasCode(err, CodeInvalidCredentials))
	_, err = fixture.provider.SignIn(ctx, "a@x.com", "newsecret")
	assert.NoError(err)
}

func Test_LocalProvider_WhenResetTokenExpired_ShouldReject(t *testing.T) {
	assert := assert.New(t)
	fixture := newProviderFixture(t, filepath.Join(t.TempDir(), "auth.db"))
	ctx := context.Background()
	_, _ = fixture.provider.SignUp(ctx, "a@x.com", "secret1")

	tokens := make(chan string, 1)
	_ = fixture.bus.Subscribe(events.PasswordResetRequestedTopic, func(event events.PasswordResetRequested) {
		tokens <- event.Token
	})
	_ = fixture.provider.SendPasswordReset(ctx, "a@x.com")
	fixture.provider.now = func() time.Time { return time.Now().Add(2 * resetTokenTTL) }

	err := fixture.provider.ResetPassword(ctx, <-tokens, "newsecret")

	assert.True(HasCode(err, CodeResetTokenInvalid))
}

func Test_LocalProvider_DeleteAccount_WhenCurrent_ShouldSignOut(t *testing.T) {
	assert := assert.New(t)
	fixture := newProviderFixture(t, filepath.Join(t.TempDir(), "auth.db"))
	ctx := context.Background()
	created, _ := fixture.provider.SignUp(ctx, "a@x.com", "secret1")
	_, _ = fixture.provider.SignIn(ctx, "a@x.com", "secret1")

	assert.NoError(fixture.provider.DeleteAccount(ctx, created.UID))

	assert.Nil(fixture.provider.Current())
	_, err := fixture.provider.SignIn(ctx, "a@x.com", "secret1")
	assert.True(HasCode(err, CodeInvalidCredentials))
}
