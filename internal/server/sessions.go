package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fartswap/fartswap-core/internal/session"
	"github.com/fartswap/fartswap-core/internal/swap"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

var (
	errNoSigner     = errors.New("no signing wallet is configured")
	errSignerNoAuth = errors.New("the signing wallet requires API_KEY to be set")
)

func (h *Handlers) session(c echo.Context) (*session.Session, error) {
	s, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		return nil, h.err(c, http.StatusNotFound, "session not found", nil)
	}
	return s, nil
}

// withSession runs fn against the addressed session and answers with the
// resulting snapshot, or the mapped error.
func (h *Handlers) withSession(timeout time.Duration, fn func(ctx context.Context, s *session.Session, c echo.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := h.session(c)
		if s == nil {
			return err
		}
		ctx, cancel := h.withTimeout(c.Request().Context(), timeout)
		defer cancel()

		err = fn(ctx, s, c)
		if c.Response().Committed {
			return nil
		}
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, s.Snapshot())
	}
}

func (h *Handlers) SessionCreate(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	s := h.Sessions.Create(ctx)
	return c.JSON(http.StatusCreated, s.Snapshot())
}

func (h *Handlers) SessionGet(c echo.Context) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

func (h *Handlers) SessionDelete(c echo.Context) error {
	if !h.Sessions.Close(c.Param("id")) {
		return h.err(c, http.StatusNotFound, "session not found", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) SessionNotifications(c echo.Context) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	return c.JSON(http.StatusOK, NotificationsResponse{Items: s.Notifications()})
}

func (h *Handlers) SessionSelectFrom() echo.HandlerFunc {
	return h.withSession(15*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		var req MintRequest
		if err := c.Bind(&req); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid json", nil)
		}
		return s.SelectFrom(ctx, req.Mint)
	})
}

func (h *Handlers) SessionSelectTo() echo.HandlerFunc {
	return h.withSession(15*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		var req MintRequest
		if err := c.Bind(&req); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid json", nil)
		}
		return s.SelectTo(ctx, req.Mint)
	})
}

func (h *Handlers) SessionFlip() echo.HandlerFunc {
	return h.withSession(15*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		return s.Flip(ctx)
	})
}

func (h *Handlers) SessionAmount() echo.HandlerFunc {
	return h.withSession(15*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		var req AmountRequest
		if err := c.Bind(&req); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid json", nil)
		}
		_, err := s.SetAmount(ctx, req.Amount)
		return err
	})
}

func (h *Handlers) SessionSlippage() echo.HandlerFunc {
	return h.withSession(15*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		var req SlippageRequest
		if err := c.Bind(&req); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid json", nil)
		}
		_, err := s.SetSlippage(ctx, req.Slippage)
		return err
	})
}

// SessionFraction sets the amount to a percentage of the balance (100 = Max).
func (h *Handlers) SessionFraction() echo.HandlerFunc {
	return h.withSession(15*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		var req FractionRequest
		if err := c.Bind(&req); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid json", nil)
		}
		_, err := s.UseBalanceFraction(ctx, req.Percent)
		return err
	})
}

func (h *Handlers) SessionConnectWallet() echo.HandlerFunc {
	return h.withSession(10*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		var req WalletRequest
		if err := c.Bind(&req); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid json", nil)
		}
		if req.Signer {
			if h.Signer == nil {
				return h.err(c, http.StatusBadRequest, errNoSigner.Error(), nil)
			}
			if !h.signerAuth {
				return h.err(c, http.StatusForbidden, errSignerNoAuth.Error(), nil)
			}
			s.ConnectWallet(ctx, h.Signer)
			return nil
		}
		w, err := wallet.NewWatch(req.Address)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid wallet address", map[string]any{"err": err.Error()})
		}
		s.ConnectWallet(ctx, w)
		return nil
	})
}

func (h *Handlers) SessionDisconnectWallet() echo.HandlerFunc {
	return h.withSession(10*time.Second, func(ctx context.Context, s *session.Session, c echo.Context) error {
		s.DisconnectWallet(ctx)
		return nil
	})
}

// SessionSwap executes the session's form. Once a transaction was submitted
// the receipt is returned even when confirmation failed or timed out.
func (h *Handlers) SessionSwap(c echo.Context) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	receipt, err := s.Swap(ctx)
	if err == nil {
		return c.JSON(http.StatusOK, SwapResponse{Receipt: receipt, Session: s.Snapshot()})
	}
	if receipt == nil {
		return h.fail(c, err)
	}

	code := statusFor(err)
	return c.JSON(code, SwapResponse{
		Receipt: receipt,
		Session: s.Snapshot(),
		Error: &ErrorResponse{
			Error:     err.Error(),
			Code:      code,
			Kind:      string(swap.Kind(err)),
			Retryable: swap.Retryable(err),
		},
	})
}
