package services

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
)

type accountProvider interface {
	SignUp(ctx context.Context, email, password string) (*entities.Identity, error)
	DeleteAccount(ctx context.Context, uid string) error
}

type profileWriter interface {
	Save(ctx context.Context, profile entities.Profile) error
	Update(ctx context.Context, uid string, fields map[string]any) error
}

type sessionRefresher interface {
	Refresh(ctx context.Context) error
}

type RegistrationForm struct {
	Name     string        `json:"name" validate:"required,max=100"`
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"required"`
	Role     entities.Role `json:"userType" validate:"required,oneof=employee employer"`
}

type ProfileEdit struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Address string `json:"address"`
	Bio     string `json:"bio" validate:"max=2000"`
}

type ProfileService struct {
	accounts accountProvider
	profiles profileWriter
	blobs    blobUploader
	session  sessionRefresher
}

func NewProfileService(accounts accountProvider, profiles profileWriter, blobs blobUploader) *ProfileService {
	return &ProfileService{accounts: accounts, profiles: profiles, blobs: blobs}
}

// SetSession makes profile edits reload the signed-in user's profile.
func (s *ProfileService) SetSession(session sessionRefresher) {
	s.session = session
}

// Register creates the account and its role profile. The account does not
// survive a failed profile write, otherwise it could never leave the
// missing-profile state.
func (s *ProfileService) Register(ctx context.Context, form RegistrationForm) (*entities.Identity, error) {

	form.Name = strings.TrimSpace(form.Name)
	if err := entities.Validate(form); err != nil {
		return nil, err
	}

	identity, err := s.accounts.SignUp(ctx, form.Email, form.Password)
	if err != nil {
		return nil, err
	}

	profile := entities.NewProfile(*identity, form.Name, form.Role)
	if err = s.profiles.Save(ctx, *profile); err != nil {
		if deleteErr := s.accounts.DeleteAccount(context.WithoutCancel(ctx), identity.UID); deleteErr != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).
				Errorf("failed to remove account %s after profile write error: %v", identity.UID, deleteErr)
		}
		return nil, errors.Wrap(err, "failed to create profile")
	}

	log.Infof("registered %s as %s", identity.UID, form.Role)
	return identity, nil
}

// Edit updates the editable profile fields. The role is fixed at registration.
func (s *ProfileService) Edit(ctx context.Context, identity entities.Identity, edit ProfileEdit) error {

	edit.Name = strings.TrimSpace(edit.Name)
	if err := entities.Validate(edit); err != nil {
		return err
	}

	err := s.profiles.Update(ctx, identity.UID, map[string]any{
		"name":    edit.Name,
		"phone":   edit.Phone,
		"address": edit.Address,
		"bio":     edit.Bio,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update profile")
	}
	return s.refresh(ctx)
}

func (s *ProfileService) UploadPhoto(ctx context.Context, identity entities.Identity, contentType string, data []byte) (string, error) {

	if len(data) == 0 {
		return "", errors.New("photo is empty")
	}

	ref, err := s.blobs.Upload(ctx, "profilePhotos/"+identity.UID, contentType, data)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStorage).Errorf("photo upload failed: %v", err)
		return "", errors.Wrap(err, "failed to upload photo")
	}

	if err = s.profiles.Update(ctx, identity.UID, map[string]any{"photoRef": ref}); err != nil {
		return "", errors.Wrap(err, "failed to attach photo")
	}
	return ref, s.refresh(ctx)
}

func (s *ProfileService) refresh(ctx context.Context) error {
	if s.session == nil {
		return nil
	}
	return s.session.Refresh(ctx)
}
