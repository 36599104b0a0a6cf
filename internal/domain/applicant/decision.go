package applicant

// Decision is the admission state of an applicant.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Terminal() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Tally is everything the decision rule looks at. Positive and Negative count
// votes of members other than the creator.
type Tally struct {
	Positive     uint64
	Negative     uint64
	CreatorVoted bool
	CreatorVote  bool
	OtherMembers uint64
}

// RequiredVotes is the other-member turnout needed once the creator approved:
// ceil(OtherMembers / 2).
func (t Tally) RequiredVotes() uint64 {
	return (t.OtherMembers + 1) / 2
}

// Decide applies creator veto, then majority of the other members.
// It is pure: the same tally always yields the same decision.
func Decide(t Tally) Decision {
	if !t.CreatorVoted {
		return DecisionPending
	}
	if !t.CreatorVote {
		return DecisionRejected
	}
	if t.OtherMembers == 0 {
		return DecisionApproved
	}
	if t.Positive+t.Negative < t.RequiredVotes() {
		return DecisionPending
	}
	if t.Positive > t.Negative {
		return DecisionApproved
	}
	return DecisionRejected
}
