package navigation

import (
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/session"
	"github.com/pkg/errors"
	"slices"
)

type Screen string

const (
	Landing Screen = "Landing"
	Login   Screen = "Login"
	SignUp  Screen = "SignUp"

	JobSearch      Screen = "JobSearch"
	JobDetails     Screen = "JobDetails"
	CompanyDetails Screen = "CompanyDetails"
	ApplyJob       Screen = "ApplyJob"
	Notifications  Screen = "Notifications"

	AdminPanel         Screen = "AdminPanel"
	CompanyAnalysis    Screen = "CompanyAnalysis"
	AddJob             Screen = "AddJob"
	AddedJobs          Screen = "AddedJobs"
	EditJob            Screen = "EditJob"
	ViewApplications   Screen = "ViewApplications"
	JobApplications    Screen = "JobApplications"
	ApplicationDetails Screen = "ApplicationDetails"

	Profile     Screen = "Profile"
	EditProfile Screen = "EditProfile"

	ErrorScreen Screen = "Error"
)

type GraphName string

const (
	GraphLoading   GraphName = "loading"
	GraphSignedOut GraphName = "signed_out"
	GraphEmployee  GraphName = "employee"
	GraphEmployer  GraphName = "employer"
	GraphError     GraphName = "error"
)

const (
	ReasonProfileMissing = "profile_missing"
	ReasonFetchFailed    = "fetch_failed"
	ReasonUnknownRole    = "unknown_role"
)

// Graph is the set of screens reachable in one session state. The loading graph has none.
type Graph struct {
	Name    GraphName
	Screens []Screen
	Initial Screen
	// Reason tells error graphs apart; it is empty for the others.
	Reason string
}

func (g Graph) Reachable(screen Screen) bool {
	return slices.Contains(g.Screens, screen)
}

// Same reports whether switching from g to other would change what is shown.
func (g Graph) Same(other Graph) bool {
	return g.Name == other.Name && g.Reason == other.Reason
}

var (
	signedOutScreens = []Screen{Landing, Login, SignUp}
	employeeScreens  = []Screen{JobSearch, JobDetails, CompanyDetails, ApplyJob, Notifications, Profile, EditProfile}
	employerScreens  = []Screen{AdminPanel, CompanyAnalysis, AddJob, AddedJobs, EditJob, ViewApplications,
		JobApplications, ApplicationDetails, Profile, EditProfile}
)

// Resolve maps a session state to its graph. It has no side effects.
func Resolve(state session.State) Graph {

	switch state.Status {
	case session.StatusSignedOut:
		return Graph{Name: GraphSignedOut, Screens: slices.Clone(signedOutScreens), Initial: Landing}
	case session.StatusError:
		return errorGraph(errorReason(state.Err))
	case session.StatusReady:
		switch state.Role() {
		case entities.RoleEmployee:
			return Graph{Name: GraphEmployee, Screens: slices.Clone(employeeScreens), Initial: JobSearch}
		case entities.RoleEmployer:
			return Graph{Name: GraphEmployer, Screens: slices.Clone(employerScreens), Initial: AdminPanel}
		default:
			return errorGraph(ReasonUnknownRole)
		}
	default:
		return Graph{Name: GraphLoading}
	}
}

func errorGraph(reason string) Graph {
	return Graph{Name: GraphError, Screens: []Screen{ErrorScreen}, Initial: ErrorScreen, Reason: reason}
}

func errorReason(err error) string {
	if errors.Is(err, session.ErrProfileMissing) {
		return ReasonProfileMissing
	}
	return ReasonFetchFailed
}
