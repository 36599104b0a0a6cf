package repayment_test

import (
	"context"
	"errors"
	"testing"

	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/domain/loan"
	"stokvel-backend/internal/domain/policy"
	"stokvel-backend/internal/testutil/ledgertest"
	"stokvel-backend/internal/usecase/lending"
	"stokvel-backend/internal/usecase/repayment"
)

var (
	alice = ledgertest.Addr(1) // borrower
	bob   = ledgertest.Addr(2)
	carol = ledgertest.Addr(3)
	now   = ledgertest.T0
)

type funding struct {
	lender string
	amount uint64
}

func setup(t *testing.T) (*ledgertest.Env, *lending.Usecase, *repayment.Usecase) {
	t.Helper()
	env := ledgertest.New(t)
	env.Seed(t, alice, 1000)
	env.Seed(t, bob, 2000)
	env.Seed(t, carol, 600)
	return env, lending.NewUsecase(env.Runner), repayment.NewUsecase(env.Runner)
}

func activeLoan(t *testing.T, lu *lending.Usecase, amount uint64, fs ...funding) *lending.LoanDTO {
	t.Helper()
	ctx := context.Background()
	l, err := lu.RequestLoan(ctx, lending.RequestInput{Caller: alice, Amount: amount, Now: now})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	for _, f := range fs {
		if _, err := lu.FundLoan(ctx, lending.FundInput{Caller: f.lender, LoanID: l.LoanID, Amount: f.amount, Now: now}); err != nil {
			t.Fatalf("fund: %v", err)
		}
	}
	got, err := lu.GetLoan(ctx, l.LoanID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != loan.StateActive {
		t.Fatalf("loan not active: %s", got.State)
	}
	return got
}

func TestMakeMonthlyPayment_OnTime(t *testing.T) {
	env, lu, ru := setup(t)
	l := activeLoan(t, lu, 1000, funding{bob, 1000})
	due := l.Installments[0].DueDate

	res, err := ru.MakeMonthlyPayment(context.Background(), repayment.PaymentInput{Caller: alice, LoanID: l.LoanID, Payment: 108, Now: due})
	if err != nil {
		t.Fatal(err)
	}
	if res.LateFee != 0 || res.Principal != 83 || res.Interest != 25 || res.Completed {
		t.Fatalf("payment = %+v", res)
	}
	lender := env.Account(t, bob)
	if lender.TotalSavings != 1000+108 || lender.AmountLentOut != 1000-83 {
		t.Fatalf("lender = %+v", lender)
	}
	got, _ := lu.GetLoan(context.Background(), l.LoanID)
	if got.NextInstallmentIndex != 1 || !got.Installments[0].IsPaid || got.Lenders[0].PrincipalReturned != 83 {
		t.Fatalf("loan = %+v", got)
	}
	if env.Publisher.Count(event.InstallmentPaid) != 1 {
		t.Fatalf("events = %v", env.Publisher.Types())
	}
}

func TestMakeMonthlyPayment_LateFee(t *testing.T) {
	env, lu, ru := setup(t)
	l := activeLoan(t, lu, 1000, funding{bob, 1000})
	at := l.Installments[0].DueDate.Add(policy.LateFeeUnit + 1)
	ctx := context.Background()

	// 108 * 5% = 5.4, truncated to 5.
	if _, err := ru.MakeMonthlyPayment(ctx, repayment.PaymentInput{Caller: alice, LoanID: l.LoanID, Payment: 108, Now: at}); !errors.Is(err, loan.ErrWrongAmount) {
		t.Fatalf("want ErrWrongAmount, got %v", err)
	}
	got, _ := lu.GetLoan(ctx, l.LoanID)
	if got.Installments[0].LateFeesAccrued != 0 {
		t.Fatalf("rejected payment recorded a late fee")
	}

	res, err := ru.MakeMonthlyPayment(ctx, repayment.PaymentInput{Caller: alice, LoanID: l.LoanID, Payment: 113, Now: at})
	if err != nil {
		t.Fatal(err)
	}
	if res.LateFee != 5 || res.Shares[0].Income != 30 {
		t.Fatalf("payment = %+v", res)
	}
	if env.Account(t, bob).TotalSavings != 1000+113 {
		t.Fatalf("lender savings = %d", env.Account(t, bob).TotalSavings)
	}
	got, _ = lu.GetLoan(ctx, l.LoanID)
	if got.Installments[0].LateFeesAccrued != 5 {
		t.Fatalf("late fee not recorded")
	}
}

func TestMakeMonthlyPayment_ProratesAndLeavesDust(t *testing.T) {
	env, lu, ru := setup(t)
	l := activeLoan(t, lu, 300, funding{carol, 100}, funding{bob, 200})
	before := env.Account(t, carol).TotalSavings + env.Account(t, bob).TotalSavings
	treasuryBefore := env.TreasuryBalance(t)

	res, err := ru.MakeMonthlyPayment(context.Background(), repayment.PaymentInput{
		Caller: alice, LoanID: l.LoanID, Payment: l.Installments[0].AmountDue, Now: l.Installments[0].DueDate,
	})
	if err != nil {
		t.Fatal(err)
	}
	// principal 25 and interest 7 split 1:2 with truncation.
	want := []repayment.LenderShare{{Lender: carol, Principal: 8, Income: 2}, {Lender: bob, Principal: 16, Income: 4}}
	if len(res.Shares) != 2 || res.Shares[0] != want[0] || res.Shares[1] != want[1] {
		t.Fatalf("shares = %+v", res.Shares)
	}
	after := env.Account(t, carol).TotalSavings + env.Account(t, bob).TotalSavings
	if after-before != 30 {
		t.Fatalf("lenders credited %d, want 30", after-before)
	}
	if env.TreasuryBalance(t) != treasuryBefore+32 {
		t.Fatalf("treasury = %d, want %d", env.TreasuryBalance(t), treasuryBefore+32)
	}
}

func TestMakeMonthlyPayment_FullTermCompletes(t *testing.T) {
	env, lu, ru := setup(t)
	l := activeLoan(t, lu, 300, funding{carol, 100}, funding{bob, 200})
	ctx := context.Background()

	last := -1
	for i, in := range l.Installments {
		res, err := ru.MakeMonthlyPayment(ctx, repayment.PaymentInput{Caller: alice, LoanID: l.LoanID, Payment: in.AmountDue, Now: in.DueDate})
		if err != nil {
			t.Fatalf("installment %d: %v", i, err)
		}
		if res.Index <= last {
			t.Fatalf("index went from %d to %d", last, res.Index)
		}
		last = res.Index
		if res.Completed != (i == policy.LoanTerm-1) {
			t.Fatalf("completed=%v at %d", res.Completed, i)
		}
	}

	got, _ := lu.GetLoan(ctx, l.LoanID)
	if got.State != loan.StateCompleted || got.NextInstallmentIndex != policy.LoanTerm {
		t.Fatalf("loan = %+v", got)
	}
	borrower := env.Account(t, alice)
	if borrower.AmountLockedCollateral != 0 {
		t.Fatalf("collateral not released: %+v", borrower)
	}
	for _, addr := range []string{bob, carol} {
		if lent := env.Account(t, addr).AmountLentOut; lent != 0 {
			t.Fatalf("%s still has %d lent out", addr, lent)
		}
	}

	_, err := ru.MakeMonthlyPayment(ctx, repayment.PaymentInput{Caller: alice, LoanID: l.LoanID, Payment: 1, Now: now})
	if !errors.Is(err, loan.ErrAlreadySettled) {
		t.Fatalf("payment after completion: %v", err)
	}
}

func TestMakeMonthlyPayment_Errors(t *testing.T) {
	_, lu, ru := setup(t)
	ctx := context.Background()
	active := activeLoan(t, lu, 100, funding{bob, 100})
	pending, err := lu.RequestLoan(ctx, lending.RequestInput{Caller: alice, Amount: 100, Now: now})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      repayment.PaymentInput
		wantErr error
	}{
		{"missing loan", repayment.PaymentInput{Caller: alice, LoanID: 999, Payment: 10}, loan.ErrNotFound},
		{"not active", repayment.PaymentInput{Caller: alice, LoanID: pending.LoanID, Payment: 10}, loan.ErrNotActive},
		{"not borrower", repayment.PaymentInput{Caller: bob, LoanID: active.LoanID, Payment: 10}, loan.ErrNotBorrower},
		{"overpayment", repayment.PaymentInput{Caller: alice, LoanID: active.LoanID, Payment: 11}, loan.ErrWrongAmount},
		{"underpayment", repayment.PaymentInput{Caller: alice, LoanID: active.LoanID, Payment: 9}, loan.ErrWrongAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Now = now
			if _, err := ru.MakeMonthlyPayment(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}
