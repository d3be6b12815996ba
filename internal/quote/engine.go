package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fartswap/fartswap-core/internal/amm"
	"github.com/fartswap/fartswap-core/internal/pools"
	"github.com/fartswap/fartswap-core/internal/tokens"
)

var (
	// ErrQuoteUnavailable means the pool cannot price this trade. Never
	// reported as a zero quote.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrInvalidSlippage  = errors.New("invalid slippage")
)

// VaultReader reads SPL token account balances in base units.
type VaultReader interface {
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

type Request struct {
	From        tokens.Descriptor
	To          tokens.Descriptor
	Amount      decimal.Decimal
	SlippagePct decimal.Decimal
}

// Result is one priced trade. A newer quote supersedes it.
type Result struct {
	PoolID     string `json:"pool_id"`
	InputMint  string `json:"input_mint"`
	OutputMint string `json:"output_mint"`

	AmountIn     decimal.Decimal `json:"amount_in"`
	AmountOut    decimal.Decimal `json:"amount_out"`
	MinAmountOut decimal.Decimal `json:"min_amount_out"`
	Fee          decimal.Decimal `json:"fee"`

	AmountInRaw     uint64 `json:"amount_in_raw"`
	AmountOutRaw    uint64 `json:"amount_out_raw"`
	MinAmountOutRaw uint64 `json:"min_amount_out_raw"`

	// PriceImpact is a percent.
	PriceImpact    decimal.Decimal `json:"price_impact"`
	ExecutionPrice string          `json:"execution_price"`
	FeeBps         uint64          `json:"fee_bps"`
	SlippageBps    uint64          `json:"slippage_bps"`
	QuotedAt       time.Time       `json:"quoted_at"`

	BaseToQuote bool         `json:"-"`
	Pool        pools.Record `json:"-"`
}

// PriceImpactDisplay renders the impact with two significant digits.
func (r *Result) PriceImpactDisplay() string {
	return amm.Significant(r.PriceImpact, 2) + "%"
}

type Engine struct {
	vaults VaultReader
	logger *logrus.Logger
	now    func() time.Time
}

func NewEngine(vaults VaultReader, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{vaults: vaults, logger: logger, now: time.Now}
}

// Quote prices a fixed-input trade against the pool's current vault reserves.
func (e *Engine) Quote(ctx context.Context, pool *pools.Record, req Request) (*Result, error) {
	if pool == nil {
		return nil, fmt.Errorf("%w: no pool", ErrQuoteUnavailable)
	}
	inMint, err := solana.PublicKeyFromBase58(req.From.Mint)
	if err != nil {
		return nil, fmt.Errorf("invalid input mint: %w", err)
	}
	outMint, err := solana.PublicKeyFromBase58(req.To.Mint)
	if err != nil {
		return nil, fmt.Errorf("invalid output mint: %w", err)
	}
	baseToQuote, err := pool.Direction(inMint)
	if err != nil || !pool.Has(outMint) || inMint.Equals(outMint) {
		return nil, fmt.Errorf("%w: pool %s does not trade %s -> %s", ErrQuoteUnavailable, pool.ID, req.From.Symbol, req.To.Symbol)
	}

	bps, err := amm.SlippageBps(req.SlippagePct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSlippage, err)
	}

	inDec, outDec := pool.BaseDecimals, pool.QuoteDecimals
	if !baseToQuote {
		inDec, outDec = outDec, inDec
	}

	amountIn, err := amm.ToBaseUnits(req.Amount, inDec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuoteUnavailable, err)
	}
	if !amountIn.IsPositive() {
		return nil, fmt.Errorf("%w: %w", ErrQuoteUnavailable, amm.ErrZeroAmount)
	}

	reserveIn, reserveOut, err := e.reserves(ctx, pool, baseToQuote)
	if err != nil {
		return nil, err
	}

	swap, err := amm.ConstantProductOut(amountIn, reserveIn, reserveOut, pool.FeeNumerator, pool.FeeDenominator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuoteUnavailable, err)
	}
	if !swap.AmountOut.IsPositive() {
		return nil, fmt.Errorf("%w: trade too small to produce output", ErrQuoteUnavailable)
	}
	if !amountIn.IsUint64() {
		return nil, fmt.Errorf("%w: amount exceeds u64", ErrQuoteUnavailable)
	}
	minOut := amm.ApplySlippage(swap.AmountOut, bps)

	res := &Result{
		PoolID:     pool.ID.String(),
		InputMint:  req.From.Mint,
		OutputMint: req.To.Mint,

		AmountIn:     amm.FromBaseUnits(amountIn, inDec),
		AmountOut:    amm.FromBaseUnits(swap.AmountOut, outDec),
		MinAmountOut: amm.FromBaseUnits(minOut, outDec),
		Fee:          amm.FromBaseUnits(swap.Fee, inDec),

		AmountInRaw:     amountIn.Uint64(),
		AmountOutRaw:    swap.AmountOut.Uint64(),
		MinAmountOutRaw: minOut.Uint64(),

		PriceImpact: amm.PriceImpact(swap.AmountInNetFee, swap.AmountOut, reserveIn, reserveOut).
			Mul(decimal.NewFromInt(100)).Round(4),
		ExecutionPrice: ExecutionPrice(req.From.Symbol, req.To.Symbol,
			amm.FromBaseUnits(swap.AmountInNetFee, inDec), amm.FromBaseUnits(swap.AmountOut, outDec)),
		FeeBps:      pool.FeeNumerator * 10000 / pool.FeeDenominator,
		SlippageBps: bps,
		QuotedAt:    e.now(),

		BaseToQuote: baseToQuote,
		Pool:        *pool,
	}

	e.logger.WithFields(logrus.Fields{
		"pool":    res.PoolID,
		"in":      res.AmountIn.String(),
		"out":     res.AmountOut.String(),
		"min_out": res.MinAmountOut.String(),
		"impact":  res.PriceImpact.String(),
	}).Debug("quote computed")
	return res, nil
}

func (e *Engine) reserves(ctx context.Context, pool *pools.Record, baseToQuote bool) (in, out math.Int, err error) {
	inVault, outVault := pool.Vaults(baseToQuote)

	var rin, rout uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.vaults.GetTokenAccountBalance(gctx, inVault)
		if err != nil {
			return fmt.Errorf("read vault %s: %w", inVault, err)
		}
		rin = v
		return nil
	})
	g.Go(func() error {
		v, err := e.vaults.GetTokenAccountBalance(gctx, outVault)
		if err != nil {
			return fmt.Errorf("read vault %s: %w", outVault, err)
		}
		rout = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return math.Int{}, math.Int{}, fmt.Errorf("failed to read pool reserves: %w", err)
	}
	return math.NewIntFromUint64(rin), math.NewIntFromUint64(rout), nil
}

// ExecutionPrice renders "1 X = Y Z" with Y at six significant digits.
func ExecutionPrice(fromSymbol, toSymbol string, in, out decimal.Decimal) string {
	if in.IsZero() {
		return ""
	}
	return fmt.Sprintf("1 %s = %s %s", fromSymbol, amm.Significant(out.DivRound(in, 18), 6), toSymbol)
}
