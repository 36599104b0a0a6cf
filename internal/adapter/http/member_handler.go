package http

import (
	"context"
	"net/http"

	"stokvel-backend/internal/usecase/ledger"
	"stokvel-backend/internal/usecase/lending"
	"stokvel-backend/internal/usecase/savings"

	"github.com/labstack/echo/v4"
)

type MemberHandler struct {
	sav  *savings.Usecase
	lend *lending.Usecase
	p    Presenter
}

func NewMemberHandler(sav *savings.Usecase, lend *lending.Usecase, p Presenter) *MemberHandler {
	return &MemberHandler{sav: sav, lend: lend, p: p}
}

type amountReq struct {
	Amount string `json:"amount" validate:"required,amount"`
}

func (h *MemberHandler) Deposit(c echo.Context) error {
	return h.move(c, h.sav.Deposit)
}

func (h *MemberHandler) Withdraw(c echo.Context) error {
	return h.move(c, h.sav.Withdraw)
}

func (h *MemberHandler) move(c echo.Context, op func(context.Context, savings.AmountInput) (*ledger.AccountDTO, error)) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	var req amountReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	amt, _ := ParseAmount(req.Amount, h.p.decimals)
	dto, err := op(c.Request().Context(), savings.AmountInput{Caller: who, Amount: amt, Now: nowUTC()})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Account(dto))
}

func (h *MemberHandler) Close(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	dto, err := h.sav.Close(c.Request().Context(), who, nowUTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Account(dto))
}

func (h *MemberHandler) Account(c echo.Context) error {
	addr, ok, err := addrParam(c, "address")
	if !ok {
		return err
	}
	dto, err := h.sav.Account(c.Request().Context(), addr)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Account(dto))
}

func (h *MemberHandler) Loans(c echo.Context) error {
	addr, ok, err := addrParam(c, "address")
	if !ok {
		return err
	}
	list, err := h.lend.LoansByBorrower(c.Request().Context(), addr)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Loans(list))
}
