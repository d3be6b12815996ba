package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/events"
	"github.com/fartswap/fartswap-core/internal/flags"
	"github.com/fartswap/fartswap-core/internal/pools"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/session"
	"github.com/fartswap/fartswap-core/internal/tokens"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

type BalanceReader interface {
	GetBalance(ctx context.Context, mint, owner string) decimal.Decimal
}

type Quoter interface {
	QuotePair(ctx context.Context, req quote.Request) (*quote.Result, error)
}

type PoolDirectory interface {
	Stats() pools.Stats
	Refresh(ctx context.Context) error
}

// FlagStore is satisfied by *flags.Store.
type FlagStore interface {
	Upsert(ctx context.Context, key string, value bool) (*flags.Flag, error)
	Get(ctx context.Context, key string) (*flags.Flag, error)
	Enabled(ctx context.Context, key string, fallback bool) (bool, error)
	List(ctx context.Context) ([]*flags.Flag, error)
	Delete(ctx context.Context, key string) error
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Sessions *session.Manager
	Tokens   tokens.Source
	Balances BalanceReader
	Quotes   Quoter
	Pools    PoolDirectory
	Flags    FlagStore      // nil when Redis is not configured
	History  events.History // nil when Redis is not configured
	Signer   wallet.Wallet  // service signing wallet, nil when none is configured
	DevMode  bool
	Logger   *logrus.Logger

	// signerAuth is set by NewServer when requests are authenticated.
	// Without it the service wallet is never handed to a session.
	signerAuth bool
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (h *Handlers) Health(c echo.Context) error {
	resp := HealthResponse{OK: true}
	if h.Pools != nil {
		resp.Pools = h.Pools.Stats()
	}
	return c.JSON(http.StatusOK, resp)
}

// ListTokens lists the catalog, optionally filtered by q (symbol, name or mint).
// Accepts limit query parameter (default: 50, range: 1-500)
func (h *Handlers) ListTokens(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 500 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 500"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res := h.Tokens.Load(ctx)
	return c.JSON(http.StatusOK, TokensResponse{
		Items:    res.Catalog.Search(c.QueryParam("q"), limit),
		Total:    res.Catalog.Len(),
		Fallback: res.Fallback,
		Warning:  res.Warning,
	})
}

// Token resolves a single mint, importing it from the upstream list when it
// is not already in the catalog.
func (h *Handlers) Token(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	d, err := h.Tokens.Import(ctx, c.Param("mint"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Balance returns the owner's balance of mint (default SOL) in whole units.
func (h *Handlers) Balance(c echo.Context) error {
	owner := strings.TrimSpace(c.Param("owner"))
	if _, err := solana.PublicKeyFromBase58(owner); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid owner", map[string]any{"owner": "must be a base58 public key"})
	}
	mint := strings.TrimSpace(c.QueryParam("mint"))
	if mint == "" {
		mint = constants.MintSOL
	}
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "must be a base58 public key"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	bal := h.Balances.GetBalance(ctx, mint, owner)
	return c.JSON(http.StatusOK, BalanceResponse{Owner: owner, Mint: mint, Balance: bal})
}

// Quote prices a single-pool swap without a session.
// Query: inputMint, outputMint, amount (whole units), slippage (percent).
func (h *Handlers) Quote(c echo.Context) error {
	inputMint := strings.TrimSpace(c.QueryParam("inputMint"))
	outputMint := strings.TrimSpace(c.QueryParam("outputMint"))
	if inputMint == "" {
		return h.err(c, http.StatusBadRequest, "invalid inputMint", map[string]any{"inputMint": "required"})
	}
	if outputMint == "" {
		return h.err(c, http.StatusBadRequest, "invalid outputMint", map[string]any{"outputMint": "required"})
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(c.QueryParam("amount")))
	if err != nil || !amount.IsPositive() {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive number"})
	}
	slippage := decimal.RequireFromString(constants.DefaultSlippage)
	if v := strings.TrimSpace(c.QueryParam("slippage")); v != "" {
		slippage, err = decimal.NewFromString(v)
		if err != nil || slippage.IsNegative() {
			return h.err(c, http.StatusBadRequest, "invalid slippage", map[string]any{"slippage": "must be a non-negative percent"})
		}
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	from, err := h.Tokens.Import(ctx, inputMint)
	if err != nil {
		return h.fail(c, err)
	}
	to, err := h.Tokens.Import(ctx, outputMint)
	if err != nil {
		return h.fail(c, err)
	}

	res, err := h.Quotes.QuotePair(ctx, quote.Request{From: from, To: to, Amount: amount, SlippagePct: slippage})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, QuoteResponse{Result: res, PriceImpactDisplay: res.PriceImpactDisplay()})
}

// RecentSwaps returns the latest swap events, newest first.
// Accepts limit query parameter (default: 50, range: 1-200)
func (h *Handlers) RecentSwaps(c echo.Context) error {
	if h.History == nil {
		return h.err(c, http.StatusServiceUnavailable, "swap history is not configured", nil)
	}
	limit := 50
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > constants.RecentSwapsMax {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.History.Recent(ctx, int64(limit))
	if err != nil {
		h.Logger.WithError(err).Warn("recent swaps lookup failed")
		return h.err(c, http.StatusInternalServerError, "failed to get swaps", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) PoolStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Pools.Stats())
}

// PoolRefresh re-fetches the pool list. On failure the previous snapshot
// keeps serving.
func (h *Handlers) PoolRefresh(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	if err := h.Pools.Refresh(ctx); err != nil {
		h.Logger.WithError(err).Warn("pool refresh failed")
		return h.err(c, http.StatusBadGateway, "failed to refresh pools", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, h.Pools.Stats())
}

// FlagsUpsert creates or updates a feature flag with the given key and value
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing feature flag with the given key
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) FlagsGet(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handlers) FlagsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
// Returns 204 No Content on successful deletion
func (h *Handlers) FlagsDelete(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
