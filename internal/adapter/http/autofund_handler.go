package http

import (
	"net/http"

	"stokvel-backend/internal/usecase/autofund"

	"github.com/labstack/echo/v4"
)

type AutoFundHandler struct {
	uc *autofund.Usecase
	p  Presenter
}

func NewAutoFundHandler(uc *autofund.Usecase, p Presenter) *AutoFundHandler {
	return &AutoFundHandler{uc: uc, p: p}
}

type ruleReq struct {
	MaxFundAmount     string `json:"max_fund_amount"     validate:"required,amount"`
	MinSavingsBalance string `json:"min_savings_balance" validate:"required,amount"`
	IsActive          *bool  `json:"is_active"           validate:"required"`
}

func (h *AutoFundHandler) SetRule(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	var req ruleReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	maxFund, _ := ParseAmount(req.MaxFundAmount, h.p.decimals)
	minSavings, _ := ParseAmount(req.MinSavingsBalance, h.p.decimals)
	dto, err := h.uc.SetRule(c.Request().Context(), autofund.RuleInput{
		Caller:            who,
		MaxFundAmount:     maxFund,
		MinSavingsBalance: minSavings,
		IsActive:          *req.IsActive,
		Now:               nowUTC(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Rule(dto))
}

func (h *AutoFundHandler) GetRule(c echo.Context) error {
	addr, ok, err := addrParam(c, "address")
	if !ok {
		return err
	}
	dto, err := h.uc.GetRule(c.Request().Context(), addr)
	if err != nil {
		return writeError(c, err)
	}
	if dto == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no auto-fund rule", Code: "RULE_NOT_FOUND"})
	}
	return c.JSON(http.StatusOK, h.p.Rule(dto))
}
