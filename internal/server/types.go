package server

import (
	"github.com/shopspring/decimal"

	"github.com/fartswap/fartswap-core/internal/pools"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/session"
	"github.com/fartswap/fartswap-core/internal/swap"
	"github.com/fartswap/fartswap-core/internal/tokens"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error     string `json:"error"`               // Human-readable error message
	Code      int    `json:"code"`                // HTTP status code
	Kind      string `json:"kind,omitempty"`      // Error kind for swap and quote failures
	Retryable bool   `json:"retryable,omitempty"` // Whether retrying may succeed
	Details   any    `json:"details,omitempty"`   // Additional error details (dev mode only)
}

type HealthResponse struct {
	OK    bool        `json:"ok"`
	Pools pools.Stats `json:"pools"`
}

type TokensResponse struct {
	Items    []tokens.Descriptor `json:"items"`
	Total    int                 `json:"total"`
	Fallback bool                `json:"fallback"`
	Warning  string              `json:"warning,omitempty"`
}

type BalanceResponse struct {
	Owner   string          `json:"owner"`
	Mint    string          `json:"mint"`
	Balance decimal.Decimal `json:"balance"`
}

// QuoteResponse wraps a quote with the display strings the UI shows.
type QuoteResponse struct {
	*quote.Result
	PriceImpactDisplay string `json:"price_impact_display"`
}

type SwapResponse struct {
	Receipt *swap.Receipt    `json:"receipt,omitempty"`
	Error   *ErrorResponse   `json:"error,omitempty"`
	Session session.Snapshot `json:"session"`
}

type MintRequest struct {
	Mint string `json:"mint"`
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type SlippageRequest struct {
	Slippage string `json:"slippage"`
}

type FractionRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

// WalletRequest connects either a read-only address or, with Signer set,
// the service's configured signing wallet.
type WalletRequest struct {
	Address string `json:"address"`
	Signer  bool   `json:"signer"`
}

type NotificationsResponse struct {
	Items []session.Notification `json:"items"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}
