package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fartswap/fartswap-core/internal/session"
	"github.com/fartswap/fartswap-core/internal/swap"
	"github.com/fartswap/fartswap-core/internal/tokens"
)

// NotFoundJSON returns an HTTP error handler that keeps every error in the
// ErrorResponse shape.
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tokens.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, tokens.ErrInvalidMint):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrQuoting), errors.Is(err, session.ErrNotLoaded):
		return http.StatusConflict
	}
	switch swap.Kind(err) {
	case swap.KindUserInput:
		return http.StatusBadRequest
	case swap.KindNoLiquidity:
		return http.StatusNotFound
	case swap.KindQuoteUnavailable, swap.KindFailed:
		return http.StatusUnprocessableEntity
	case swap.KindUnconfirmed:
		return http.StatusAccepted
	default:
		return http.StatusBadGateway
	}
}

// fail writes err with its mapped status and kind. The underlying message is
// always shown; it is what the user needs to act on.
func (h *Handlers) fail(c echo.Context, err error) error {
	code := statusFor(err)
	return c.JSON(code, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		Kind:      string(swap.Kind(err)),
		Retryable: swap.Retryable(err),
	})
}
