package swap

import (
	"errors"

	"github.com/fartswap/fartswap-core/internal/pools"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/raydium"
)

// Input errors. Each is reported before any network call.
var (
	ErrWalletNotConnected = errors.New("please connect your wallet")
	ErrWalletCannotSign   = errors.New("connected wallet cannot sign transactions")
	ErrTokensNotSelected  = errors.New("please select both tokens")
	ErrSameToken          = errors.New("source and destination tokens must differ")
	ErrInvalidAmount      = errors.New("please enter a valid amount")
	ErrInvalidSlippage    = errors.New("slippage must be a non-negative number")
)

// Outcome errors.
var (
	ErrSubmitFailed        = errors.New("failed to submit transaction")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrConfirmationTimeout = errors.New("transaction was not confirmed in time; check the signature before retrying")
)

// ErrorKind groups failures by what the user can do about them.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindUserInput        ErrorKind = "user_input"
	KindNoLiquidity      ErrorKind = "no_liquidity"
	KindQuoteUnavailable ErrorKind = "quote_unavailable"
	KindNetwork          ErrorKind = "network"
	KindFailed           ErrorKind = "transaction_failed"
	KindUnconfirmed      ErrorKind = "unconfirmed"
)

// Kind classifies err. Anything unrecognised is treated as a network or
// signing problem.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrWalletNotConnected),
		errors.Is(err, ErrWalletCannotSign),
		errors.Is(err, ErrTokensNotSelected),
		errors.Is(err, ErrSameToken),
		errors.Is(err, quote.ErrSameToken),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidSlippage),
		errors.Is(err, quote.ErrInvalidSlippage),
		errors.Is(err, raydium.ErrNoSourceAccount):
		return KindUserInput
	case errors.Is(err, pools.ErrNoLiquidityPool):
		return KindNoLiquidity
	case errors.Is(err, quote.ErrQuoteUnavailable):
		return KindQuoteUnavailable
	case errors.Is(err, ErrConfirmationTimeout):
		return KindUnconfirmed
	case errors.Is(err, ErrTransactionFailed):
		return KindFailed
	default:
		return KindNetwork
	}
}

// Retryable reports whether repeating the same request could succeed.
func Retryable(err error) bool {
	switch Kind(err) {
	case KindNetwork, KindQuoteUnavailable:
		return true
	}
	return false
}
