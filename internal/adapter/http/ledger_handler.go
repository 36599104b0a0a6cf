package http

import (
	"context"
	"net/http"
	"strconv"

	"stokvel-backend/internal/domain/event"
	"stokvel-backend/internal/usecase/identity"

	"github.com/labstack/echo/v4"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
)

// EventLister reads the committed event log.
type EventLister interface {
	EventsAfter(ctx context.Context, after uint64, limit int) ([]event.Event, error)
}

type LedgerHandler struct {
	events EventLister
	ids    *identity.Usecase
}

func NewLedgerHandler(events EventLister, ids *identity.Usecase) *LedgerHandler {
	return &LedgerHandler{events: events, ids: ids}
}

// Events pages through the log: GET /events?after=<seq>&limit=<n>.
func (h *LedgerHandler) Events(c echo.Context) error {
	var after uint64
	if raw := c.QueryParam("after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid after"})
		}
		after = v
	}
	limit := defaultEventLimit
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = min(v, maxEventLimit)
	}

	list, err := h.events.EventsAfter(c.Request().Context(), after, limit)
	if err != nil {
		return writeError(c, err)
	}
	next := after
	if n := len(list); n > 0 {
		next = list[n-1].Seq
	}
	if list == nil {
		list = []event.Event{}
	}
	return c.JSON(http.StatusOK, eventsResp{Events: list, Next: next})
}

func (h *LedgerHandler) Identity(c echo.Context) error {
	hashed := c.Param("hashed_id")
	if !reHex64.MatchString(hashed) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid hashed_id"})
	}
	dto, err := h.ids.Lookup(c.Request().Context(), hashed)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
