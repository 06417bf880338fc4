package entities

import (
	"github.com/pkg/errors"
	"time"
)

var ErrInvalidTransition = errors.New("invalid application status transition")

type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "Applied"
	StatusInterview ApplicationStatus = "Interview"
	StatusOffer     ApplicationStatus = "Offer"
	StatusRejected  ApplicationStatus = "Rejected"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo allows moves between the decided states but never back to Applied.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if next == StatusApplied || next == s {
		return false
	}
	return true
}

func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{StatusApplied, StatusInterview, StatusOffer, StatusRejected}
}

type Application struct {
	ID             string            `json:"-"`
	JobID          string            `json:"jobId" validate:"required"`
	ApplicantUID   string            `json:"applicantUid"`
	ApplicantName  string            `json:"applicantName" validate:"required,max=100"`
	ApplicantEmail string            `json:"applicantEmail" validate:"required,email"`
	Phone          string            `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address        string            `json:"address,omitempty"`
	Education      string            `json:"education,omitempty"`
	Experience     string            `json:"experience,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	ResumeRef      string            `json:"resume,omitempty"`
	CoverLetter    string            `json:"coverLetter,omitempty" validate:"max=5000"`
	Position       string            `json:"position"`
	Status         ApplicationStatus `json:"status"`
	CreatedBy      string            `json:"createdBy"`
	CreatedAt      time.Time         `json:"createdAt"`
}

type Notification struct {
	ID           string    `json:"-"`
	RecipientUID string    `json:"recipientUid"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"createdAt"`
}
