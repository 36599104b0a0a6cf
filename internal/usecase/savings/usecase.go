// Package savings keeps the per-member balance: deposits, withdrawals and
// account closure.
package savings

import (
	"context"
	"time"

	"stokvel-backend/internal/domain/apperr"
	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/policy"
	"stokvel-backend/internal/domain/treasury"
	"stokvel-backend/internal/usecase/ledger"
)

type Usecase struct{ run *ledger.Runner }

func NewUsecase(run *ledger.Runner) *Usecase { return &Usecase{run: run} }

type AmountInput struct {
	Caller string
	Amount uint64
	Now    time.Time
}

func (u *Usecase) Deposit(ctx context.Context, in AmountInput) (*ledger.AccountDTO, error) {
	if in.Amount == 0 {
		return nil, apperr.ErrZeroAmount
	}
	var dto *ledger.AccountDTO
	err := u.run.Do(ctx, "deposit", in.Now, func(c *ledger.Call) error {
		acc, err := c.ActiveMember(ctx, in.Caller)
		if err != nil {
			return err
		}
		if err := c.Receive(ctx, in.Amount); err != nil {
			return err
		}
		acc.TotalSavings += in.Amount
		if err := c.Repos.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.Deposit, map[string]any{"address": acc.Address, "amount": in.Amount}); err != nil {
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

// Withdraw pays out first and only then commits the debit.
func (u *Usecase) Withdraw(ctx context.Context, in AmountInput) (*ledger.AccountDTO, error) {
	if in.Amount == 0 {
		return nil, apperr.ErrZeroAmount
	}
	var dto *ledger.AccountDTO
	err := u.run.Do(ctx, "withdraw", in.Now, func(c *ledger.Call) error {
		acc, err := c.ActiveMember(ctx, in.Caller)
		if err != nil {
			return err
		}
		if in.Amount > acc.AvailableSavings() {
			return member.ErrInsufficientFunds
		}
		if _, err := c.Pay(ctx, acc.Address, in.Amount, treasury.ReasonWithdrawal, nil); err != nil {
			return err
		}
		acc.TotalSavings -= in.Amount
		if err := c.Repos.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.Withdrawal, map[string]any{"address": acc.Address, "amount": in.Amount}); err != nil {
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

// Close pays out available savings plus the joining fee and deactivates the
// account. Nothing may be lent out or locked.
func (u *Usecase) Close(ctx context.Context, caller string, now time.Time) (*ledger.AccountDTO, error) {
	var dto *ledger.AccountDTO
	err := u.run.Do(ctx, "close", now, func(c *ledger.Call) error {
		r := c.Repos
		acc, err := c.ActiveMember(ctx, caller)
		if err != nil {
			return err
		}
		if acc.AmountLentOut > 0 || acc.AmountLockedCollateral > 0 {
			return member.ErrCannotClose
		}
		payout := acc.AvailableSavings() + min(acc.TotalSavings, policy.JoiningFee)
		if payout > 0 {
			if _, err := c.Pay(ctx, acc.Address, payout, treasury.ReasonClosure, nil); err != nil {
				return err
			}
		}
		acc.TotalSavings -= payout
		acc.IsActive = false
		if err := r.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		club, err := r.Accounts.GetClub(ctx)
		if err != nil {
			return err
		}
		if club.TotalMembers > 0 {
			club.TotalMembers--
		}
		if err := r.Accounts.SaveClub(ctx, club); err != nil {
			return err
		}
		if err := c.Emit(ctx, event.AccountClosed, map[string]any{"address": acc.Address, "payout": payout}); err != nil {
			return err
		}
		c.Log().Info("account closed", "address", acc.Address, "payout", payout)
		dto = ledger.NewAccountDTO(acc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Account is the member view, including available savings.
func (u *Usecase) Account(ctx context.Context, address string) (*ledger.AccountDTO, error) {
	acc, err := u.run.Read().Accounts.GetByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	return ledger.NewAccountDTO(acc), nil
}
