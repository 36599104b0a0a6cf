package savings_test

import (
	"context"
	"errors"
	"testing"

	"stokvel-backend/internal/domain/apperr"
	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/treasury"
	"stokvel-backend/internal/testutil/ledgertest"
	"stokvel-backend/internal/usecase/savings"
)

var (
	alice = ledgertest.Addr(1)
	bob   = ledgertest.Addr(2)
	now   = ledgertest.T0
)

func setup(t *testing.T) (*ledgertest.Env, *savings.Usecase) {
	t.Helper()
	env := ledgertest.New(t)
	env.Seed(t, alice, 100)
	env.Seed(t, bob, 600)
	return env, savings.NewUsecase(env.Runner)
}

func TestDeposit(t *testing.T) {
	env, uc := setup(t)
	ctx := context.Background()

	acc, err := uc.Deposit(ctx, savings.AmountInput{Caller: alice, Amount: 40, Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if acc.TotalSavings != 140 || acc.AvailableSavings != 40 {
		t.Fatalf("account = %+v", acc)
	}
	if env.TreasuryBalance(t) != 740 {
		t.Fatalf("treasury = %d", env.TreasuryBalance(t))
	}
	if env.Publisher.Count(event.Deposit) != 1 {
		t.Fatalf("events = %v", env.Publisher.Types())
	}

	if _, err := uc.Deposit(ctx, savings.AmountInput{Caller: alice, Amount: 0, Now: now}); !errors.Is(err, apperr.ErrZeroAmount) {
		t.Fatalf("zero deposit: %v", err)
	}
	if _, err := uc.Deposit(ctx, savings.AmountInput{Caller: ledgertest.Addr(9), Amount: 5, Now: now}); !errors.Is(err, apperr.ErrNotActiveMember) {
		t.Fatalf("stranger deposit: %v", err)
	}
}

func TestWithdraw_ExceedingAvailableLeavesBalances(t *testing.T) {
	env, uc := setup(t)
	before := *env.Account(t, bob)

	_, err := uc.Withdraw(context.Background(), savings.AmountInput{Caller: bob, Amount: 501, Now: now})
	if !errors.Is(err, member.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	after := *env.Account(t, bob)
	if after.TotalSavings != before.TotalSavings || after.AmountLentOut != before.AmountLentOut || after.AmountLockedCollateral != before.AmountLockedCollateral {
		t.Fatalf("balances changed: %+v -> %+v", before, after)
	}
	if len(env.Gateway.Sent()) != 0 {
		t.Fatalf("value was sent")
	}
}

func TestWithdraw_PaysFirst(t *testing.T) {
	env, uc := setup(t)
	ctx := context.Background()

	acc, err := uc.Withdraw(ctx, savings.AmountInput{Caller: bob, Amount: 500, Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if acc.TotalSavings != 100 || acc.AvailableSavings != 0 {
		t.Fatalf("account = %+v", acc)
	}
	if env.Gateway.Total(bob) != 500 || env.TreasuryBalance(t) != 200 {
		t.Fatalf("sent=%d treasury=%d", env.Gateway.Total(bob), env.TreasuryBalance(t))
	}
}

func TestWithdraw_FailedPayoutChangesNothing(t *testing.T) {
	env, uc := setup(t)
	env.Gateway.SendFn = func(context.Context, *treasury.Transfer) error { return errors.New("wallet offline") }

	_, err := uc.Withdraw(context.Background(), savings.AmountInput{Caller: bob, Amount: 100, Now: now})
	if !errors.Is(err, treasury.ErrPayoutFailed) {
		t.Fatalf("want ErrPayoutFailed, got %v", err)
	}
	if got := env.Account(t, bob).TotalSavings; got != 600 {
		t.Fatalf("savings debited despite failed payout: %d", got)
	}
	if env.TreasuryBalance(t) != 700 {
		t.Fatalf("treasury = %d", env.TreasuryBalance(t))
	}
}

func TestClose(t *testing.T) {
	env, uc := setup(t)
	ctx := context.Background()

	acc, err := uc.Close(ctx, bob, now)
	if err != nil {
		t.Fatal(err)
	}
	if acc.IsActive || acc.TotalSavings != 0 {
		t.Fatalf("account = %+v", acc)
	}
	if env.Gateway.Total(bob) != 600 {
		t.Fatalf("payout = %d, want 600", env.Gateway.Total(bob))
	}
	if env.Club(t).TotalMembers != 1 {
		t.Fatalf("member count = %d", env.Club(t).TotalMembers)
	}
	if _, err := uc.Close(ctx, bob, now); !errors.Is(err, apperr.ErrNotActiveMember) {
		t.Fatalf("second close: %v", err)
	}
	if _, err := uc.Account(ctx, bob); err != nil {
		t.Fatalf("closed account should remain readable: %v", err)
	}
}

func TestClose_WithLockedFunds(t *testing.T) {
	for _, tc := range []struct {
		name         string
		lent, locked uint64
	}{
		{"lent out", 10, 0},
		{"collateral locked", 0, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env, uc := setup(t)
			a := env.Account(t, bob)
			a.AmountLentOut = tc.lent
			a.AmountLockedCollateral = tc.locked
			if err := env.UoW.Read().Accounts.Save(context.Background(), a); err != nil {
				t.Fatal(err)
			}
			if _, err := uc.Close(context.Background(), bob, now); !errors.Is(err, member.ErrCannotClose) {
				t.Fatalf("want ErrCannotClose, got %v", err)
			}
			if !env.Account(t, bob).IsActive {
				t.Fatalf("account deactivated")
			}
		})
	}
}
