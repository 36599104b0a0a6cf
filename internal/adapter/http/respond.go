package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stokvel-backend/internal/adapter/middleware"
	"stokvel-backend/internal/domain/apperr"

	"github.com/labstack/echo/v4"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

var notFoundCodes = map[string]bool{
	"ACCOUNT_NOT_FOUND":    true,
	"LOAN_NOT_FOUND":       true,
	"CLUB_NOT_INITIALISED": true,
	"UNKNOWN_APPLICANT":    true,
}

// StatusOf maps a ledger error to an HTTP status.
func StatusOf(err error) int {
	code := apperr.CodeOf(err)
	switch {
	case notFoundCodes[code]:
		return http.StatusNotFound
	case code == "PAYOUT_FAILED":
		return http.StatusBadGateway
	}
	switch apperr.KindOf(err) {
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindValue:
		return http.StatusUnprocessableEntity
	case apperr.KindState, apperr.KindIdentity, apperr.KindDuplicateAction:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	status := StatusOf(err)
	code := apperr.CodeOf(err)
	msg := err.Error()
	var ae *apperr.Error
	if status == http.StatusInternalServerError && !errors.As(err, &ae) {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

// decode binds and validates the body; when ok is false the response has
// already been written.
func decode(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func normalizeAddr(raw string) (string, bool) {
	a := strings.ToLower(strings.TrimSpace(raw))
	return a, reAddr.MatchString(a)
}

// caller returns the authenticated member address of the request.
func caller(c echo.Context) (string, bool, error) {
	raw := c.Request().Header.Get(middleware.MemberHeader)
	if strings.TrimSpace(raw) == "" {
		return "", false, c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + middleware.MemberHeader})
	}
	a, ok := normalizeAddr(raw)
	if !ok {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + middleware.MemberHeader})
	}
	return a, true, nil
}

func addrParam(c echo.Context, name string) (string, bool, error) {
	a, ok := normalizeAddr(c.Param(name))
	if !ok {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
	}
	return a, true, nil
}

func loanIDParam(c echo.Context) (uint64, bool, error) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	return id, true, nil
}
