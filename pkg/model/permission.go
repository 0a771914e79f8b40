package model

// Action is something a caller may attempt on a business or its content.
type Action string

const (
	ActionClaim              Action = "claim"
	ActionManageContent      Action = "manageContent"
	ActionVote               Action = "vote"
	ActionViewOwnerDashboard Action = "viewOwnerDashboard"
)

// Ownership is the caller's relation to a business, and for ActionVote to
// one of its polls.
type Ownership struct {
	Claimed bool       // the business has been claimed by someone
	Owned   bool       // the business is claimed by the caller
	Poll    *PollState // the poll voted on; nil when no poll is involved
}

// PollState is the caller's relation to a poll.
type PollState struct {
	Active bool // the poll still takes votes
	Voted  bool // the caller already voted on it
}

// RoleOf returns the role of u, or the empty role for an anonymous caller.
func RoleOf(u *User) Role {
	if u == nil {
		return ""
	}
	return u.Role
}

// Can decides whether a caller with role may perform action on a resource
// with the given ownership. The empty role denotes an anonymous caller.
func Can(role Role, own Ownership, action Action) bool {
	switch action {
	case ActionClaim:
		return role == RoleOwner && !own.Claimed
	case ActionManageContent:
		return role == RoleOwner && own.Claimed && own.Owned
	case ActionVote:
		return (role == RoleUser || role == RoleOwner) &&
			own.Poll != nil && own.Poll.Active && !own.Poll.Voted
	case ActionViewOwnerDashboard:
		return role == RoleOwner
	default:
		return false
	}
}
