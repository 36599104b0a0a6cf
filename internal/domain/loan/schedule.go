package loan

import (
	"time"

	"stokvel-backend/internal/domain/policy"
)

// RequiredCollateral is the share of principal a borrower must lock.
func RequiredCollateral(amount uint64) uint64 {
	return amount * policy.CollateralPercent / 100
}

// TotalInterest is flat interest over the whole term.
func TotalInterest(amount uint64) uint64 {
	return amount * policy.APR / 100
}

// BuildSchedule splits principal plus interest into LoanTerm installments due
// one period apart starting one period after now. The last installment absorbs
// the integer-division remainder.
func BuildSchedule(amount uint64, now time.Time) []Installment {
	total := amount + TotalInterest(amount)
	base := total / policy.LoanTerm
	remainder := total - base*policy.LoanTerm

	out := make([]Installment, policy.LoanTerm)
	for i := range out {
		out[i] = Installment{
			Idx:       i,
			DueDate:   now.Add(time.Duration(i+1) * policy.InstallmentPeriod),
			AmountDue: base,
		}
	}
	out[policy.LoanTerm-1].AmountDue += remainder
	return out
}

// Portions returns the principal and interest carried by installment idx.
// The last installment takes the cumulative rounding remainder of both.
func Portions(amountRequested, totalInterest uint64, idx int) (principal, interest uint64) {
	principal = amountRequested / policy.LoanTerm
	interest = totalInterest / policy.LoanTerm
	if idx == policy.LoanTerm-1 {
		principal = amountRequested - principal*(policy.LoanTerm-1)
		interest = totalInterest - interest*(policy.LoanTerm-1)
	}
	return principal, interest
}

// LateFee is recomputed from scratch on every check: one LateFeePercent step
// per full LateFeeUnit elapsed past the due date.
func LateFee(inst Installment, now time.Time) uint64 {
	if !now.After(inst.DueDate) {
		return 0
	}
	steps := uint64(now.Sub(inst.DueDate) / policy.LateFeeUnit)
	return inst.AmountDue * policy.LateFeePercent * steps / 100
}

// MissedInstallments counts overdue unpaid installments. The forward run starts
// at next and stops at the first installment not yet due; the backward scan
// covers indices before next. Both are counted independently.
func MissedInstallments(insts []Installment, next int, now time.Time) int {
	missed := 0
	for i := next; i < len(insts); i++ {
		if !now.After(insts[i].DueDate) {
			break
		}
		if !insts[i].IsPaid {
			missed++
		}
	}
	for i := next - 1; i >= 0 && i < len(insts); i-- {
		if !insts[i].IsPaid && now.After(insts[i].DueDate) {
			missed++
		}
	}
	return missed
}
