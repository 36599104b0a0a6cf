package http

import (
	"log/slog"
	"net/http"

	"stokvel-backend/internal/usecase/autofund"
	"stokvel-backend/internal/usecase/defaults"
	"stokvel-backend/internal/usecase/lending"
	"stokvel-backend/internal/usecase/repayment"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct {
	lend *lending.Usecase
	rep  *repayment.Usecase
	def  *defaults.Usecase
	af   *autofund.Usecase
	p    Presenter

	// run auto-funding right after a loan is requested
	autoFundOnRequest bool
}

func NewLoanHandler(lend *lending.Usecase, rep *repayment.Usecase, def *defaults.Usecase, af *autofund.Usecase, p Presenter, autoFundOnRequest bool) *LoanHandler {
	return &LoanHandler{lend: lend, rep: rep, def: def, af: af, p: p, autoFundOnRequest: autoFundOnRequest}
}

type requestLoanResp struct {
	Loan     loanResp      `json:"loan"`
	AutoFund []attemptResp `json:"autofund,omitempty"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	var req amountReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	amt, _ := ParseAmount(req.Amount, h.p.decimals)
	ctx := c.Request().Context()
	now := nowUTC()
	dto, err := h.lend.RequestLoan(ctx, lending.RequestInput{Caller: who, Amount: amt, Now: now})
	if err != nil {
		return writeError(c, err)
	}
	out := requestLoanResp{Loan: h.p.Loan(dto)}
	if h.autoFundOnRequest && h.af != nil {
		attempts, err := h.af.Run(ctx, dto.LoanID, now)
		if err != nil {
			slog.Warn("autofund after request", "loan_id", dto.LoanID, "error", err)
		}
		out.AutoFund = h.p.Attempts(attempts)
		if fresh, err := h.lend.GetLoan(ctx, dto.LoanID); err == nil {
			out.Loan = h.p.Loan(fresh)
		}
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	dto, err := h.lend.GetLoan(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Loan(dto))
}

func (h *LoanHandler) OpenLoans(c echo.Context) error {
	list, err := h.lend.OpenLoans(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Loans(list))
}

func (h *LoanHandler) Fund(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	var req amountReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	amt, _ := ParseAmount(req.Amount, h.p.decimals)
	res, err := h.lend.FundLoan(c.Request().Context(), lending.FundInput{Caller: who, LoanID: id, Amount: amt, Now: nowUTC()})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Fund(res))
}

func (h *LoanHandler) RetryDisbursement(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	dto, err := h.lend.RetryDisbursement(c.Request().Context(), who, id, nowUTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Loan(dto))
}

type paymentReq struct {
	Payment string `json:"payment" validate:"required,amount"`
}

func (h *LoanHandler) Pay(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	var req paymentReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	pay, _ := ParseAmount(req.Payment, h.p.decimals)
	dto, err := h.rep.MakeMonthlyPayment(c.Request().Context(), repayment.PaymentInput{Caller: who, LoanID: id, Payment: pay, Now: nowUTC()})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Payment(dto))
}

func (h *LoanHandler) Quote(c echo.Context) error {
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	q, err := h.lend.Quote(c.Request().Context(), id, nowUTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Quote(q))
}

func (h *LoanHandler) CheckDefault(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	dto, err := h.def.CheckLoanDefault(c.Request().Context(), defaults.CheckInput{Caller: who, LoanID: id, Now: nowUTC()})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Default(dto))
}

func (h *LoanHandler) Overdue(c echo.Context) error {
	list, err := h.def.ScanOverdue(c.Request().Context(), nowUTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LoanHandler) RunAutoFund(c echo.Context) error {
	if _, ok, err := caller(c); !ok {
		return err
	}
	id, ok, err := loanIDParam(c)
	if !ok {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.lend.GetLoan(ctx, id); err != nil {
		return writeError(c, err)
	}
	attempts, err := h.af.Run(ctx, id, nowUTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Attempts(attempts))
}
