package http

import (
	"net/http"

	"stokvel-backend/internal/usecase/admission"

	"github.com/labstack/echo/v4"
)

type ClubHandler struct {
	uc *admission.Usecase
	p  Presenter
}

func NewClubHandler(uc *admission.Usecase, p Presenter) *ClubHandler {
	return &ClubHandler{uc: uc, p: p}
}

type bootstrapReq struct {
	HashedID string `json:"hashed_id" validate:"required,hex64"`
	Payment  string `json:"payment"   validate:"required,amount"`
}

func (h *ClubHandler) Bootstrap(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	var req bootstrapReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	pay, _ := ParseAmount(req.Payment, h.p.decimals)
	dto, err := h.uc.Bootstrap(c.Request().Context(), admission.BootstrapInput{
		Caller:   who,
		HashedID: req.HashedID,
		Payment:  pay,
		Now:      nowUTC(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, h.p.Account(dto))
}

func (h *ClubHandler) Club(c echo.Context) error {
	dto, err := h.uc.Club(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Club(dto))
}

type applyReq struct {
	HashedID string `json:"hashed_id" validate:"required,hex64"`
}

func (h *ClubHandler) Apply(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	var req applyReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Apply(c.Request().Context(), admission.ApplyInput{
		Caller:   who,
		HashedID: req.HashedID,
		Now:      nowUTC(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type voteReq struct {
	Approve *bool `json:"approve" validate:"required"`
}

func (h *ClubHandler) Vote(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	target, ok, err := addrParam(c, "address")
	if !ok {
		return err
	}
	var req voteReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Vote(c.Request().Context(), admission.VoteInput{
		Caller:    who,
		Applicant: target,
		Approve:   *req.Approve,
		Now:       nowUTC(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Status takes an optional ?voter= to report whether that member has voted.
func (h *ClubHandler) Status(c echo.Context) error {
	target, ok, err := addrParam(c, "address")
	if !ok {
		return err
	}
	voter := ""
	if raw := c.QueryParam("voter"); raw != "" {
		v, ok := normalizeAddr(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid voter"})
		}
		voter = v
	}
	dto, err := h.uc.Status(c.Request().Context(), target, voter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type activateReq struct {
	Payment string `json:"payment" validate:"required,amount"`
}

func (h *ClubHandler) Activate(c echo.Context) error {
	who, ok, err := caller(c)
	if !ok {
		return err
	}
	var req activateReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	pay, _ := ParseAmount(req.Payment, h.p.decimals)
	dto, err := h.uc.Activate(c.Request().Context(), admission.ActivateInput{
		Caller:  who,
		Payment: pay,
		Now:     nowUTC(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.p.Account(dto))
}
