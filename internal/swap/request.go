package swap

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fartswap/fartswap-core/internal/tokens"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

// Request is a swap as the user entered it. Amount and SlippagePct are the
// raw text of the input fields.
type Request struct {
	From        *tokens.Descriptor
	To          *tokens.Descriptor
	Amount      string
	SlippagePct string
}

// Validated is a Request that passed Validate.
type Validated struct {
	From        tokens.Descriptor
	To          tokens.Descriptor
	Amount      decimal.Decimal
	SlippagePct decimal.Decimal
}

// Validate checks the preconditions in order and returns the first failure.
// It never touches the network.
func Validate(req Request, w wallet.Wallet) (*Validated, error) {
	if w == nil || !w.Connected() {
		return nil, ErrWalletNotConnected
	}
	if !w.CanSign() {
		return nil, ErrWalletCannotSign
	}
	if req.From == nil || req.To == nil || req.From.Mint == "" || req.To.Mint == "" {
		return nil, ErrTokensNotSelected
	}
	if req.From.Mint == req.To.Mint {
		return nil, ErrSameToken
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	slippage, err := decimal.NewFromString(strings.TrimSpace(req.SlippagePct))
	if err != nil || slippage.IsNegative() {
		return nil, ErrInvalidSlippage
	}
	return &Validated{From: *req.From, To: *req.To, Amount: amount, SlippagePct: slippage}, nil
}
