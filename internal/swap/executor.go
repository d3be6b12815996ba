// Package swap validates and executes a single fixed-input swap against one
// direct Raydium pool.
package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fartswap/fartswap-core/internal/events"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/raydium"
	"github.com/fartswap/fartswap-core/internal/rpc"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

// Quoter prices a pair through its direct pool.
type Quoter interface {
	QuotePair(ctx context.Context, req quote.Request) (*quote.Result, error)
}

// Chain is the RPC surface the executor needs.
type Chain interface {
	Sender
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	GetLatestBlockhash(ctx context.Context) (*rpc.Blockhash, error)
}

// Receipt is the result of a swap that reached the network.
type Receipt struct {
	Signature string        `json:"signature"`
	Status    Status        `json:"status"`
	Quote     *quote.Result `json:"quote"`
	Duration  time.Duration `json:"duration"`
}

type Executor struct {
	quotes    Quoter
	chain     Chain
	confirmer *Confirmer
	events    events.Publisher
	logger    *logrus.Logger
}

type ExecutorConfig struct {
	Quotes    Quoter
	Chain     Chain
	Confirmer *Confirmer
	Events    events.Publisher
	Logger    *logrus.Logger
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Events == nil {
		cfg.Events = events.Nop{}
	}
	if cfg.Confirmer == nil {
		cfg.Confirmer = NewConfirmer(ConfirmerConfig{Sender: cfg.Chain, Logger: cfg.Logger})
	}
	return &Executor{
		quotes:    cfg.Quotes,
		chain:     cfg.Chain,
		confirmer: cfg.Confirmer,
		events:    cfg.Events,
		logger:    cfg.Logger,
	}
}

// Execute runs validate -> quote -> resolve accounts -> build -> sign ->
// submit -> confirm. Stages run in order and the first failure aborts. Once
// the transaction is submitted a Receipt is always returned, alongside any
// confirmation error.
func (e *Executor) Execute(ctx context.Context, req Request, w wallet.Wallet) (*Receipt, error) {
	start := time.Now()

	v, err := Validate(req, w)
	if err != nil {
		return nil, err
	}
	owner := w.PublicKey()
	log := e.logger.WithFields(logrus.Fields{
		"owner":  owner.String(),
		"from":   v.From.Symbol,
		"to":     v.To.Symbol,
		"amount": v.Amount.String(),
	})

	q, err := e.quotes.QuotePair(ctx, quote.Request{
		From: v.From, To: v.To, Amount: v.Amount, SlippagePct: v.SlippagePct,
	})
	if err != nil {
		return nil, err
	}

	inMint := solana.MustPublicKeyFromBase58(q.InputMint)
	outMint := solana.MustPublicKeyFromBase58(q.OutputMint)

	accts, err := e.resolveAccounts(ctx, owner, inMint, outMint)
	if err != nil {
		return nil, err
	}

	ixs, err := raydium.BuildSwapInstructions(raydium.SwapParams{
		Pool:         q.Pool,
		Owner:        owner,
		InputMint:    inMint,
		OutputMint:   outMint,
		AmountIn:     q.AmountInRaw,
		MinAmountOut: q.MinAmountOutRaw,
		Source:       accts.source,
		SourceExists: accts.sourceExists,
		Dest:         accts.dest,
		DestExists:   accts.destExists,
	})
	if err != nil {
		return nil, fmt.Errorf("build swap: %w", err)
	}

	bh, err := e.chain.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockhash: %w", err)
	}
	hash, err := solana.HashFromBase58(bh.Blockhash)
	if err != nil {
		return nil, fmt.Errorf("invalid blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(ixs, hash, solana.TransactionPayer(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	if err := w.SignTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := e.confirmer.Submit(ctx, tx)
	if err != nil {
		log.WithError(err).Warn("swap submit failed")
		return nil, err
	}
	log = log.WithField("signature", sig)
	log.Info("swap submitted")

	status, confirmErr := e.confirmer.Confirm(ctx, sig)
	receipt := &Receipt{
		Signature: sig,
		Status:    status,
		Quote:     q,
		Duration:  time.Since(start),
	}
	e.publish(ctx, owner, v, receipt, confirmErr)

	if confirmErr != nil {
		log.WithError(confirmErr).WithField("status", status).Warn("swap not confirmed")
		return receipt, confirmErr
	}
	log.WithField("took", receipt.Duration).Info("swap confirmed")
	return receipt, nil
}

type resolvedAccounts struct {
	source, dest             solana.PublicKey
	sourceExists, destExists bool
}

// resolveAccounts derives the owner's token accounts and checks which exist.
func (e *Executor) resolveAccounts(ctx context.Context, owner, inMint, outMint solana.PublicKey) (*resolvedAccounts, error) {
	src, err := raydium.TokenAccount(owner, inMint)
	if err != nil {
		return nil, err
	}
	dst, err := raydium.TokenAccount(owner, outMint)
	if err != nil {
		return nil, err
	}

	r := &resolvedAccounts{source: src, dest: dst}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := e.chain.AccountExists(gctx, src)
		if err != nil {
			return fmt.Errorf("check source token account: %w", err)
		}
		r.sourceExists = ok
		return nil
	})
	g.Go(func() error {
		ok, err := e.chain.AccountExists(gctx, dst)
		if err != nil {
			return fmt.Errorf("check destination token account: %w", err)
		}
		r.destExists = ok
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

func (e *Executor) publish(ctx context.Context, owner solana.PublicKey, v *Validated, r *Receipt, confirmErr error) {
	ev := &events.SwapEvent{
		Signature:  r.Signature,
		Status:     string(r.Status),
		Timestamp:  time.Now(),
		Pair:       fmt.Sprintf("%s-%s", v.From.Symbol, v.To.Symbol),
		Owner:      owner.String(),
		InputMint:  v.From.Mint,
		OutputMint: v.To.Mint,
		TokenIn:    v.From.Symbol,
		TokenOut:   v.To.Symbol,
		AmountIn:   r.Quote.AmountIn.String(),
		MinOut:     r.Quote.MinAmountOut.String(),
		QuotedOut:  r.Quote.AmountOut.String(),
		Pool:       r.Quote.PoolID,
		Dex:        "Raydium",
	}
	if confirmErr != nil {
		ev.Error = confirmErr.Error()
	}
	if err := e.events.PublishSwap(ctx, ev); err != nil {
		e.logger.WithError(err).WithField("signature", r.Signature).Warn("failed to publish swap event")
	}
}
