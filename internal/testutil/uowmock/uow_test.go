package uowmock

import (
	"context"
	"errors"
	"testing"

	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/domain/uow"
	"stokvel-backend/internal/testutil/loanmock"
)

func TestUoW_Unimplemented(t *testing.T) {
	m := &UoW{}
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(context.Background(), 1, func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_LoadsLoan(t *testing.T) {
	want := &loan.Loan{ID: 9}
	loans := &loanmock.Repo{
		GetByIDForUpdateFn: func(_ context.Context, id uint64) (*loan.Loan, error) {
			if id != 9 {
				t.Fatalf("id = %d", id)
			}
			return want, nil
		},
	}
	m := Passthrough(uow.Repos{Loans: loans})
	called := false
	err := m.WithinLoanTx(context.Background(), 9, func(r uow.Repos, l *loan.Loan) error {
		called = true
		if l != want || r.Loans != loans {
			t.Fatalf("repos or loan not forwarded")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("WithinLoanTx: called=%v err=%v", called, err)
	}
	if m.Read().Loans != loans {
		t.Fatalf("Read did not return repos")
	}
}

func TestPassthrough_PropagatesLoadError(t *testing.T) {
	m := Passthrough(uow.Repos{Loans: &loanmock.Repo{}})
	err := m.WithinLoanTx(context.Background(), 1, func(uow.Repos, *loan.Loan) error {
		t.Fatal("callback must not run")
		return nil
	})
	if !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
