// Package policy holds the fixed economic constants of the club. They are not
// runtime-configurable.
package policy

import "time"

const (
	// JoiningFee is held back from every account and only returned on closure.
	JoiningFee uint64 = 100

	LendingLimitPercent uint64 = 70
	CollateralPercent   uint64 = 20
	APR                 uint64 = 30
	LateFeePercent      uint64 = 5

	// LoanTerm is the number of monthly installments of every loan.
	LoanTerm = 12

	InstallmentPeriod = 30 * 24 * time.Hour

	// LateFeeUnit is the length of one "late" step used by the late-fee rule.
	LateFeeUnit = 30 * 24 * time.Hour

	// DefaultThreshold is the number of missed installments that makes a loan defaultable.
	DefaultThreshold = 3

	// OverdueAlertAfter marks a loan as worth a default check in the overdue scan.
	OverdueAlertAfter = 65 * 24 * time.Hour
)
