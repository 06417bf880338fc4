package navigation

import "github.com/maxaizer/jobmarket/internal/session"

type Action string

const (
	ActionSignIn        Action = "sign_in"
	ActionSignUp        Action = "sign_up"
	ActionResetPassword Action = "reset_password"
	ActionSignOut       Action = "sign_out"
	ActionRetry         Action = "retry"
	ActionEditProfile   Action = "edit_profile"
	ActionApply         Action = "apply"
	ActionPostJob       Action = "post_job"
	ActionChangeStatus  Action = "change_status"
)

// Actions lists what the user can do in a state. Sign-out is offered wherever a user exists.
func Actions(state session.State) []Action {

	graph := Resolve(state)
	switch graph.Name {
	case GraphSignedOut:
		return []Action{ActionSignIn, ActionSignUp, ActionResetPassword}
	case GraphEmployee:
		return []Action{ActionApply, ActionEditProfile, ActionSignOut}
	case GraphEmployer:
		return []Action{ActionPostJob, ActionChangeStatus, ActionEditProfile, ActionSignOut}
	case GraphError:
		if graph.Reason == ReasonFetchFailed {
			return []Action{ActionRetry, ActionSignOut}
		}
		return []Action{ActionSignOut}
	default:
		if state.SignedIn() {
			return []Action{ActionSignOut}
		}
		return nil
	}
}
