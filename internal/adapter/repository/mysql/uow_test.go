package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	loanDomain "stokvel-backend/internal/domain/loan"
	memberDomain "stokvel-backend/internal/domain/member"
	treasuryDomain "stokvel-backend/internal/domain/treasury"
	"stokvel-backend/internal/domain/uow"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	guow := NewGormUoW(openTestDB(t))
	ctx := context.Background()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Accounts.Create(ctx, &memberDomain.Account{Address: borrowerA, HashedID: "h", IsActive: true, TotalSavings: 100}); err != nil {
			return err
		}
		return r.Treasury.Credit(ctx, 100)
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	read := guow.Read()
	acc, err := read.Accounts.GetByAddress(ctx, borrowerA)
	if err != nil || acc.TotalSavings != 100 {
		t.Fatalf("account not visible after commit: %+v %v", acc, err)
	}
	if bal, _ := read.Treasury.Balance(ctx); bal != 100 {
		t.Fatalf("treasury balance = %d", bal)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	guow := NewGormUoW(openTestDB(t))
	ctx := context.Background()
	sentinel := errors.New("boom")

	_ = guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Accounts.Create(ctx, &memberDomain.Account{Address: borrowerA, HashedID: "h", IsActive: true}); err != nil {
			return err
		}
		if err := r.Treasury.Credit(ctx, 50); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	read := guow.Read()
	if _, err := read.Accounts.GetByAddress(ctx, borrowerA); !errors.Is(err, memberDomain.ErrNotFound) {
		t.Fatalf("expected account absent after rollback, got %v", err)
	}
	if bal, _ := read.Treasury.Balance(ctx); bal != 0 {
		t.Fatalf("treasury balance survived rollback: %d", bal)
	}
}

func TestGormUoW_WithinLoanTx(t *testing.T) {
	db := openTestDB(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	seed := makeLoan(borrowerA, 1000, time.Now().UTC())
	if err := NewLoanRepository(db).Create(ctx, seed); err != nil {
		t.Fatal(err)
	}

	err := guow.WithinLoanTx(ctx, seed.ID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l.ID != seed.ID || len(l.Installments) != 12 {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		l.State = loanDomain.StateFunding
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}
	got, _ := guow.Read().Loans.GetByID(ctx, seed.ID)
	if got.State != loanDomain.StateFunding {
		t.Fatalf("state = %s", got.State)
	}

	err = guow.WithinLoanTx(ctx, 999, func(uow.Repos, *loanDomain.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTreasury_DebitShortfall(t *testing.T) {
	repo := NewTreasuryRepository(openTestDB(t))
	ctx := context.Background()
	if err := repo.Credit(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if err := repo.Debit(ctx, 11); !errors.Is(err, treasuryDomain.ErrShortfall) {
		t.Fatalf("expected shortfall, got %v", err)
	}
	if err := repo.Debit(ctx, 10); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if bal, _ := repo.Balance(ctx); bal != 0 {
		t.Fatalf("balance = %d", bal)
	}
}
