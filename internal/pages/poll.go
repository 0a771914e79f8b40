package pages

import (
	"context"
	"strconv"

	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/pkg/model"
)

// PollView is one poll as shown on a business profile.
type PollView struct {
	Poll        model.Poll
	HasVoted    bool
	CanVote     bool
	ShowResults bool
	Percentages []int
	Total       int
}

// NewPollView prepares p for display to u. Tallies are revealed after the
// viewer voted or once the poll has ended.
func NewPollView(p model.Poll, u *model.User) PollView {
	v := PollView{Poll: p, Total: p.TotalVotes()}
	if u != nil {
		v.HasVoted = p.HasVoted(u.ID)
	}
	v.CanVote = model.Can(model.RoleOf(u), p.Standing(u), model.ActionVote)
	v.ShowResults = v.HasVoted || !p.IsActive
	if v.ShowResults {
		v.Percentages = p.Percentages()
	}
	return v
}

// VotesLabel is "1 vote" or "N votes".
func VotesLabel(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return strconv.Itoa(n) + " votes"
}

// Vote casts the session user's vote on option index of p. The usual
// refusals are decided locally; the backend has the last word.
func (p *Pages) Vote(ctx context.Context, poll model.Poll, index int) (Outcome, error) {
	user := p.User()
	if !model.Can(model.RoleOf(user), poll.Standing(user), model.ActionVote) {
		switch {
		case user == nil:
			return Outcome{Banner: failure("Please login to vote")}, nil
		case poll.HasVoted(user.ID):
			return Outcome{Banner: failure("You have already voted on this poll")}, nil
		case !poll.IsActive:
			return Outcome{Banner: failure("This poll has ended")}, nil
		default:
			return Outcome{Banner: failure("You cannot vote on this poll")}, nil
		}
	}
	if index < 0 || index >= len(poll.Options) {
		return Outcome{Banner: failure("Please select an option")}, nil
	}
	return p.submit(ctx, "vote", "Failed to submit vote",
		func() error { return p.svc.Content.Vote(ctx, poll.ID, index) },
		Outcome{
			Banner:   success("Vote submitted!"),
			Navigate: goTo(guard.BusinessPath(poll.PlaceID), 0, NavState{}),
		})
}

// OwnerPollView prepares p for its owner, who sees the tallies whether or
// not the poll has ended.
func OwnerPollView(p model.Poll) PollView {
	v := NewPollView(p, nil)
	v.ShowResults = true
	v.Percentages = p.Percentages()
	return v
}
