// Package admission runs applicant intake, creator-veto voting and
// activation into a member account.
package admission

import (
	"context"
	"errors"

	"stokvel-backend/internal/domain/applicant"
	"stokvel-backend/internal/domain/event"
	domainIdentity "stokvel-backend/internal/domain/identity"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/policy"
	"stokvel-backend/internal/domain/uow"
	"stokvel-backend/internal/usecase/identity"
	"stokvel-backend/internal/usecase/ledger"
)

type Usecase struct{ run *ledger.Runner }

func NewUsecase(run *ledger.Runner) *Usecase { return &Usecase{run: run} }

// Bootstrap creates the club with the caller as creator and first member.
func (u *Usecase) Bootstrap(ctx context.Context, in BootstrapInput) (*ledger.AccountDTO, error) {
	var dto *ledger.AccountDTO
	err := u.run.Do(ctx, "bootstrap", in.Now, func(c *ledger.Call) error {
		r := c.Repos
		if _, err := r.Accounts.GetClub(ctx); err == nil {
			return member.ErrClubExists
		} else if !errors.Is(err, member.ErrClubNotFound) {
			return err
		}
		if in.Payment < policy.JoiningFee {
			return applicant.ErrInsufficientFee
		}
		if err := identity.Reserve(ctx, r, in.HashedID, in.Caller); err != nil {
			return err
		}
		if err := c.Receive(ctx, in.Payment); err != nil {
			return err
		}
		acc := &member.Account{
			Address:      in.Caller,
			HashedID:     in.HashedID,
			IsActive:     true,
			TotalSavings: in.Payment,
			JoinedAt:     c.Now,
		}
		if err := r.Accounts.Create(ctx, acc); err != nil {
			return err
		}
		if err := r.Accounts.CreateClub(ctx, &member.Club{ID: member.ClubID, Creator: in.Caller, TotalMembers: 1}); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.MemberActivated, map[string]any{
			"address": in.Caller, "payment": in.Payment, "creator": true,
		}); err != nil {
			return err
		}
		c.Log().Info("club bootstrapped", "creator", in.Caller)
		dto = ledger.NewAccountDTO(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Apply opens an application for the caller. A rejected application for the
// same address is replaced.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*StatusDTO, error) {
	var dto *StatusDTO
	err := u.run.Do(ctx, "apply", in.Now, func(c *ledger.Call) error {
		r := c.Repos
		club, err := r.Accounts.GetClub(ctx)
		if err != nil {
			return err
		}
		if acc, err := r.Accounts.GetByAddress(ctx, in.Caller); err == nil && acc.IsActive {
			return applicant.ErrAlreadyMember
		} else if err != nil && !errors.Is(err, member.ErrNotFound) {
			return err
		}

		others, err := otherMembers(ctx, r, club)
		if err != nil {
			return err
		}
		prev, err := r.Applicants.Get(ctx, in.Caller)
		switch {
		case err == nil:
			if err := u.latch(ctx, c, prev, others); err != nil {
				return err
			}
			if prev.Decision(others) != applicant.DecisionRejected {
				return applicant.ErrApplicationPending
			}
			if err := r.Applicants.Delete(ctx, in.Caller); err != nil {
				return err
			}
		case !errors.Is(err, applicant.ErrUnknownApplicant):
			return err
		}

		if err := identity.Available(ctx, r, in.HashedID); err != nil {
			if errors.Is(err, domainIdentity.ErrBlacklisted) {
				return domainIdentity.ErrAlreadyBlacklisted
			}
			return err
		}
		if err := addressClear(ctx, r, in.Caller); err != nil {
			return err
		}

		a := &applicant.Applicant{Address: in.Caller, HashedID: in.HashedID, Announced: applicant.DecisionPending}
		if err := r.Applicants.Create(ctx, a); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.ApplicationSubmitted, map[string]any{"address": in.Caller}); err != nil {
			return err
		}
		dto = status(a, others)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Vote records one vote by an active member and latches the decision the
// first time it becomes terminal.
func (u *Usecase) Vote(ctx context.Context, in VoteInput) (*StatusDTO, error) {
	var dto *StatusDTO
	err := u.run.Do(ctx, "vote", in.Now, func(c *ledger.Call) error {
		r := c.Repos
		if _, err := c.ActiveMember(ctx, in.Caller); err != nil {
			return err
		}
		a, err := r.Applicants.Get(ctx, in.Applicant)
		if err != nil {
			return err
		}
		voted, err := r.Applicants.HasVoted(ctx, in.Applicant, in.Caller)
		if err != nil {
			return err
		}
		if voted {
			return applicant.ErrAlreadyVoted
		}
		club, err := r.Accounts.GetClub(ctx)
		if err != nil {
			return err
		}
		others, err := otherMembers(ctx, r, club)
		if err != nil {
			return err
		}
		if a.Decision(others).Terminal() {
			return applicant.ErrVotingClosed
		}

		if err := r.Applicants.AddVote(ctx, &applicant.Vote{Applicant: in.Applicant, Voter: in.Caller, Approve: in.Approve}); err != nil {
			return err
		}
		switch {
		case in.Caller == club.Creator:
			a.CreatorVoted = true
			a.CreatorVote = in.Approve
		case in.Approve:
			a.PositiveVotes++
		default:
			a.NegativeVotes++
		}
		if err := c.Emit(ctx, event.VoteCast, map[string]any{
			"applicant": in.Applicant, "voter": in.Caller, "approve": in.Approve,
		}); err != nil {
			return err
		}

		if d := applicant.Decide(a.Tally(others)); d.Terminal() {
			if err := u.announce(ctx, c, a, d); err != nil {
				return err
			}
		}
		if err := r.Applicants.Save(ctx, a); err != nil {
			return err
		}
		dto = status(a, others)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) announce(ctx context.Context, c *ledger.Call, a *applicant.Applicant, d applicant.Decision) error {
	a.Announced = d
	typ := event.ApplicantRejected
	if d == applicant.DecisionApproved {
		typ = event.ApplicantApproved
	}
	c.Log().Info("admission decided", "applicant", a.Address, "decision", d)
	return c.Emit(ctx, typ, map[string]any{"applicant": a.Address})
}

// latch announces a decision that turned terminal without a vote, after the
// member count shrank under a pending application.
func (u *Usecase) latch(ctx context.Context, c *ledger.Call, a *applicant.Applicant, others uint64) error {
	if a.Announced.Terminal() {
		return nil
	}
	d := applicant.Decide(a.Tally(others))
	if !d.Terminal() {
		return nil
	}
	if err := u.announce(ctx, c, a, d); err != nil {
		return err
	}
	return c.Repos.Applicants.Save(ctx, a)
}

// Status is a side-effect free view; voter may be empty.
func (u *Usecase) Status(ctx context.Context, address, voter string) (*StatusDTO, error) {
	r := u.run.Read()
	a, err := r.Applicants.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	club, err := r.Accounts.GetClub(ctx)
	if err != nil {
		return nil, err
	}
	others, err := otherMembers(ctx, r, club)
	if err != nil {
		return nil, err
	}
	dto := status(a, others)
	if voter != "" {
		voted, err := r.Applicants.HasVoted(ctx, address, voter)
		if err != nil {
			return nil, err
		}
		dto.VoterHasVoted = &voted
	}
	return dto, nil
}

// Activate turns an approved applicant into an active account. Payment above
// the joining fee is credited to savings.
func (u *Usecase) Activate(ctx context.Context, in ActivateInput) (*ledger.AccountDTO, error) {
	var dto *ledger.AccountDTO
	err := u.run.Do(ctx, "activate", in.Now, func(c *ledger.Call) error {
		r := c.Repos
		a, err := r.Applicants.Get(ctx, in.Caller)
		if err != nil {
			return err
		}
		club, err := r.Accounts.GetClub(ctx)
		if err != nil {
			return err
		}
		others, err := otherMembers(ctx, r, club)
		if err != nil {
			return err
		}
		if err := u.latch(ctx, c, a, others); err != nil {
			return err
		}
		if a.Decision(others) != applicant.DecisionApproved {
			return applicant.ErrNotApproved
		}
		if in.Payment < policy.JoiningFee {
			return applicant.ErrInsufficientFee
		}
		if err := addressClear(ctx, r, in.Caller); err != nil {
			return err
		}
		if err := identity.Reserve(ctx, r, a.HashedID, in.Caller); err != nil {
			return err
		}
		if err := c.Receive(ctx, in.Payment); err != nil {
			return err
		}

		acc, err := r.Accounts.GetByAddress(ctx, in.Caller)
		switch {
		case errors.Is(err, member.ErrNotFound):
			acc = &member.Account{Address: in.Caller, HashedID: a.HashedID, IsActive: true, TotalSavings: in.Payment, JoinedAt: c.Now}
			err = r.Accounts.Create(ctx, acc)
		case err == nil:
			if acc.IsActive {
				return applicant.ErrAlreadyMember
			}
			// a closed account rejoins with only the new payment
			acc.HashedID = a.HashedID
			acc.IsActive = true
			acc.TotalSavings = in.Payment
			acc.AmountLockedCollateral = 0
			acc.AmountLentOut = 0
			acc.JoinedAt = c.Now
			err = r.Accounts.Save(ctx, acc)
		}
		if err != nil {
			return err
		}

		club.TotalMembers++
		if err := r.Accounts.SaveClub(ctx, club); err != nil {
			return err
		}
		if err := r.Applicants.Delete(ctx, in.Caller); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.MemberActivated, map[string]any{
			"address": in.Caller, "payment": in.Payment, "creator": false,
		}); err != nil {
			return err
		}
		dto = ledger.NewAccountDTO(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Club returns the club summary.
func (u *Usecase) Club(ctx context.Context) (*ClubDTO, error) {
	r := u.run.Read()
	club, err := r.Accounts.GetClub(ctx)
	if err != nil {
		return nil, err
	}
	bal, err := r.Treasury.Balance(ctx)
	if err != nil {
		return nil, err
	}
	return &ClubDTO{Creator: club.Creator, TotalMembers: club.TotalMembers, TreasuryBalance: bal, JoiningFee: policy.JoiningFee}, nil
}

// addressClear keeps a defaulted borrower's address out even under a new identifier.
func addressClear(ctx context.Context, r uow.Repos, address string) error {
	black, err := r.Identities.IsAddressBlacklisted(ctx, address)
	if err != nil {
		return err
	}
	if black {
		return domainIdentity.ErrAlreadyBlacklisted
	}
	return nil
}

// otherMembers counts active members besides the creator.
func otherMembers(ctx context.Context, r uow.Repos, club *member.Club) (uint64, error) {
	n := club.TotalMembers
	creator, err := r.Accounts.GetByAddress(ctx, club.Creator)
	if err != nil && !errors.Is(err, member.ErrNotFound) {
		return 0, err
	}
	if err == nil && creator.IsActive && n > 0 {
		n--
	}
	return n, nil
}

func status(a *applicant.Applicant, others uint64) *StatusDTO {
	t := a.Tally(others)
	d := a.Decision(others)
	return &StatusDTO{
		Address:             a.Address,
		PositiveVotes:       a.PositiveVotes,
		NegativeVotes:       a.NegativeVotes,
		CreatorVoted:        a.CreatorVoted,
		CreatorVotePositive: a.CreatorVoted && a.CreatorVote,
		TotalOtherMembers:   others,
		RequiredVotes:       t.RequiredVotes(),
		DecisionMade:        d.Terminal(),
		Decision:            d,
	}
}
