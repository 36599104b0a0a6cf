package applicant

import (
	"time"

	"stokvel-backend/internal/domain/apperr"
)

var (
	ErrUnknownApplicant   = apperr.New(apperr.KindIdentity, "UNKNOWN_APPLICANT", "no application exists for this address")
	ErrAlreadyVoted       = apperr.New(apperr.KindDuplicateAction, "ALREADY_VOTED", "member has already voted on this applicant")
	ErrNotApproved        = apperr.New(apperr.KindState, "NOT_APPROVED", "applicant has not been approved")
	ErrInsufficientFee    = apperr.New(apperr.KindValue, "INSUFFICIENT_FEE", "payment is below the joining fee")
	ErrApplicationPending = apperr.New(apperr.KindDuplicateAction, "APPLICATION_PENDING", "an application for this address is already open")
	ErrVotingClosed       = apperr.New(apperr.KindState, "VOTING_CLOSED", "a decision has already been reached for this applicant")
	ErrAlreadyMember      = apperr.New(apperr.KindIdentity, "ALREADY_MEMBER", "address already belongs to an active member")
)

// Table: applicants
type Applicant struct {
	Address       string `gorm:"column:address;primaryKey;size:42" json:"address"`
	HashedID      string `gorm:"column:hashed_id;size:64;not null" json:"hashed_id"`
	PositiveVotes uint64 `gorm:"column:positive_votes;not null" json:"positive_votes"`
	NegativeVotes uint64 `gorm:"column:negative_votes;not null" json:"negative_votes"`
	CreatorVoted  bool   `gorm:"column:creator_voted;not null" json:"creator_voted"`
	CreatorVote   bool   `gorm:"column:creator_vote;not null" json:"creator_vote"`
	// Announced latches the first terminal decision so its event fires once and
	// later membership changes cannot reopen it.
	Announced Decision  `gorm:"column:announced;size:16;not null;default:pending" json:"announced"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Applicant) TableName() string { return "applicants" }

// Table: applicant_votes (one row per voter per applicant)
type Vote struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Applicant string    `gorm:"column:applicant;size:42;not null;uniqueIndex:ux_votes_applicant_voter" json:"applicant"`
	Voter     string    `gorm:"column:voter;size:42;not null;uniqueIndex:ux_votes_applicant_voter" json:"voter"`
	Approve   bool      `gorm:"column:approve;not null" json:"approve"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Vote) TableName() string { return "applicant_votes" }

// Tally builds the decision input from the stored counters.
func (a *Applicant) Tally(otherMembers uint64) Tally {
	return Tally{
		Positive:     a.PositiveVotes,
		Negative:     a.NegativeVotes,
		CreatorVoted: a.CreatorVoted,
		CreatorVote:  a.CreatorVote,
		OtherMembers: otherMembers,
	}
}

// Decision returns the latched outcome if one exists, otherwise the live view.
func (a *Applicant) Decision(otherMembers uint64) Decision {
	if a.Announced.Terminal() {
		return a.Announced
	}
	return Decide(a.Tally(otherMembers))
}
