package admission

import (
	"time"

	"stokvel-backend/internal/domain/applicant"
)

type BootstrapInput struct {
	Caller   string
	HashedID string
	Payment  uint64
	Now      time.Time
}

type ApplyInput struct {
	Caller   string
	HashedID string
	Now      time.Time
}

type VoteInput struct {
	Caller    string
	Applicant string
	Approve   bool
	Now       time.Time
}

type ActivateInput struct {
	Caller  string
	Payment uint64
	Now     time.Time
}

// StatusDTO is the voting view of one applicant.
type StatusDTO struct {
	Address             string             `json:"address"`
	PositiveVotes       uint64             `json:"positive_votes"`
	NegativeVotes       uint64             `json:"negative_votes"`
	CreatorVoted        bool               `json:"creator_voted"`
	CreatorVotePositive bool               `json:"creator_vote_positive"`
	TotalOtherMembers   uint64             `json:"total_other_members"`
	RequiredVotes       uint64             `json:"required_votes"`
	DecisionMade        bool               `json:"decision_made"`
	Decision            applicant.Decision `json:"decision"`
	VoterHasVoted       *bool              `json:"voter_has_voted,omitempty"`
}

type ClubDTO struct {
	Creator         string `json:"creator"`
	TotalMembers    uint64 `json:"total_members"`
	TreasuryBalance uint64 `json:"treasury_balance"`
	JoiningFee      uint64 `json:"joining_fee"`
}
