package entities

import (
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleEmployer Role = "employer"
)

func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleEmployer
}

// Identity is issued by the auth provider. The app only holds a read-only copy.
type Identity struct {
	UID   string
	Email string
}

func (i *Identity) SameAs(other *Identity) bool {
	if i == nil || other == nil {
		return i == nil && other == nil
	}
	return i.UID == other.UID
}

type Profile struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Role      Role      `json:"userType" validate:"required,oneof=employee employer"`
	Phone     string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address   string    `json:"address,omitempty"`
	Bio       string    `json:"bio,omitempty" validate:"max=2000"`
	PhotoRef  string    `json:"photoRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewProfile(identity Identity, name string, role Role) *Profile {
	return &Profile{
		UID:       identity.UID,
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(identity.Email),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
