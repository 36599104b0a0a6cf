package http

import (
	"net/http"

	"stokvel-backend/internal/usecase/admission"
	"stokvel-backend/internal/usecase/autofund"
	"stokvel-backend/internal/usecase/defaults"
	"stokvel-backend/internal/usecase/identity"
	"stokvel-backend/internal/usecase/lending"
	"stokvel-backend/internal/usecase/repayment"
	"stokvel-backend/internal/usecase/savings"

	"github.com/labstack/echo/v4"
)

// Deps is everything the routes are served from.
type Deps struct {
	Admission *admission.Usecase
	Savings   *savings.Usecase
	Lending   *lending.Usecase
	Repayment *repayment.Usecase
	Defaults  *defaults.Usecase
	AutoFund  *autofund.Usecase
	Identity  *identity.Usecase
	Events    EventLister

	Presenter         Presenter
	AutoFundOnRequest bool
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// HealthChecks are run by /health, keyed by service name.
	HealthChecks map[string]HealthCheck
}

func Register(e *echo.Echo, d Deps) {
	h := NewHandler(d.HealthChecks)
	club := NewClubHandler(d.Admission, d.Presenter)
	mem := NewMemberHandler(d.Savings, d.Lending, d.Presenter)
	loans := NewLoanHandler(d.Lending, d.Repayment, d.Defaults, d.AutoFund, d.Presenter, d.AutoFundOnRequest)
	rules := NewAutoFundHandler(d.AutoFund, d.Presenter)
	led := NewLedgerHandler(d.Events, d.Identity)

	e.GET("/health", h.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	e.GET("/club", club.Club)
	e.POST("/club/bootstrap", club.Bootstrap)
	e.POST("/applicants", club.Apply)
	e.GET("/applicants/:address", club.Status)
	e.POST("/applicants/:address/votes", club.Vote)

	e.POST("/members/activate", club.Activate)
	e.POST("/members/deposit", mem.Deposit)
	e.POST("/members/withdraw", mem.Withdraw)
	e.POST("/members/close", mem.Close)
	e.GET("/members/:address", mem.Account)
	e.GET("/members/:address/loans", mem.Loans)

	e.POST("/loans", loans.RequestLoan)
	e.GET("/loans/open", loans.OpenLoans)
	e.GET("/loans/overdue", loans.Overdue)
	e.GET("/loans/:loan_id", loans.GetLoan)
	e.GET("/loans/:loan_id/quote", loans.Quote)
	e.POST("/loans/:loan_id/fund", loans.Fund)
	e.POST("/loans/:loan_id/disburse", loans.RetryDisbursement)
	e.POST("/loans/:loan_id/payments", loans.Pay)
	e.POST("/loans/:loan_id/default-check", loans.CheckDefault)
	e.POST("/loans/:loan_id/autofund", loans.RunAutoFund)

	e.PUT("/autofund-rules", rules.SetRule)
	e.GET("/autofund-rules/:address", rules.GetRule)

	e.GET("/events", led.Events)
	e.GET("/identities/:hashed_id", led.Identity)
}
