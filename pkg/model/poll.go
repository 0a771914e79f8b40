package model

import (
	"math"
	"slices"
)

// PollOption is one answer of a poll with its backend-computed tally.
type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is an owner-created question. Tallies and the voter list are
// maintained by the backend; the client only renders them.
type Poll struct {
	ID       string       `json:"_id"`
	PlaceID  string       `json:"placeId"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	Voters   []string     `json:"voters"`
	IsActive bool         `json:"isActive"`
}

// TotalVotes sums the votes of all options.
func (p *Poll) TotalVotes() int {
	total := 0
	for _, o := range p.Options {
		total += o.Votes
	}
	return total
}

// Percentage returns round(votes_i / total * 100), or 0 when nobody voted
// or the index is out of range.
func (p *Poll) Percentage(i int) int {
	if i < 0 || i >= len(p.Options) {
		return 0
	}
	total := p.TotalVotes()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Options[i].Votes) / float64(total) * 100))
}

// Percentages returns Percentage for every option, in option order.
func (p *Poll) Percentages() []int {
	out := make([]int, len(p.Options))
	for i := range p.Options {
		out[i] = p.Percentage(i)
	}
	return out
}

// Standing returns u's relation to p, the input of Can for ActionVote.
func (p *Poll) Standing(u *User) Ownership {
	st := PollState{Active: p.IsActive}
	if u != nil {
		st.Voted = p.HasVoted(u.ID)
	}
	return Ownership{Poll: &st}
}

// HasVoted reports whether userID appears in the voter list.
func (p *Poll) HasVoted(userID string) bool {
	return userID != "" && slices.Contains(p.Voters, userID)
}
