package session

import "github.com/maxaizer/jobmarket/internal/entities"

type Status string

const (
	StatusLoading   Status = "loading"
	StatusSignedOut Status = "signed_out"
	StatusReady     Status = "ready"
	StatusError     Status = "error"
)

// State is an immutable snapshot of the session. Err is set only with StatusError.
type State struct {
	Identity *entities.Identity
	Profile  *entities.Profile
	Status   Status
	Err      error
}

func (s State) Role() entities.Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

// SignedIn reports whether a user exists in this state, whatever its status.
func (s State) SignedIn() bool {
	return s.Identity != nil
}

func (s State) clone() State {
	if s.Identity != nil {
		identity := *s.Identity
		s.Identity = &identity
	}
	if s.Profile != nil {
		profile := *s.Profile
		s.Profile = &profile
	}
	return s
}
