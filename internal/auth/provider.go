package auth

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/entities"
)

// Provider issues identities and reports every change of the signed-in one.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*entities.Identity, error)
	SignUp(ctx context.Context, email, password string) (*entities.Identity, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	// OnIdentityChange calls listener with the current identity right away and after every change.
	// A nil identity means signed out.
	OnIdentityChange(listener func(*entities.Identity)) (unsubscribe func())
	Current() *entities.Identity
}
