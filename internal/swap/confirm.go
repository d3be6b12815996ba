package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/rpc"
)

// Status is the outcome of a submitted swap.
type Status string

const (
	StatusConfirmed   Status = "confirmed"
	StatusFailed      Status = "failed"
	StatusUnconfirmed Status = "unconfirmed"
)

// Sender submits and tracks signed transactions.
type Sender interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.SendOptions) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
}

// Confirmer submits with a bounded number of attempts, then polls the
// signature with exponential backoff until the commitment is reached or the
// deadline passes.
type Confirmer struct {
	sender     Sender
	logger     *logrus.Logger
	attempts   int
	timeout    time.Duration
	commitment string

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

type ConfirmerConfig struct {
	Sender         Sender
	Logger         *logrus.Logger
	SubmitAttempts int
	ConfirmTimeout time.Duration
	Commitment     string
}

func NewConfirmer(cfg ConfirmerConfig) *Confirmer {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.SubmitAttempts < 1 {
		cfg.SubmitAttempts = constants.DefaultSubmitAttempts
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 60 * time.Second
	}
	if cfg.Commitment == "" {
		cfg.Commitment = constants.CommitmentConfirmed
	}
	return &Confirmer{
		sender:         cfg.Sender,
		logger:         cfg.Logger,
		attempts:       cfg.SubmitAttempts,
		timeout:        cfg.ConfirmTimeout,
		commitment:     cfg.Commitment,
		initialBackoff: constants.ConfirmInitialBackoff,
		maxBackoff:     constants.ConfirmMaxBackoff,
	}
}

// Submit sends tx up to the configured number of attempts. A transaction the
// node rejects (preflight failure) is not resent.
func (c *Confirmer) Submit(ctx context.Context, tx *solana.Transaction) (string, error) {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 1; attempt <= c.attempts; attempt++ {
		sig, err := c.sender.SendTransaction(ctx, tx, rpc.DefaultSendOptions())
		if err == nil {
			return sig, nil
		}
		lastErr = err

		var rpcErr *rpc.RPCError
		if errors.As(err, &rpcErr) {
			return "", fmt.Errorf("%w: %w", ErrTransactionFailed, err)
		}

		c.logger.WithError(err).WithField("attempt", attempt).Warn("transaction submit failed")
		if attempt == c.attempts {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return "", fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
		backoff = nextBackoff(backoff, c.maxBackoff)
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrSubmitFailed, c.attempts, lastErr)
}

// Confirm waits for sig. It returns StatusUnconfirmed with
// ErrConfirmationTimeout when the outcome is still unknown at the deadline.
func (c *Confirmer) Confirm(ctx context.Context, sig string) (Status, error) {
	deadline := time.Now().Add(c.timeout)
	backoff := c.initialBackoff
	log := c.logger.WithField("signature", sig)

	for {
		status, err := c.sender.GetSignatureStatus(ctx, sig)
		switch {
		case err != nil:
			log.WithError(err).Debug("signature status query failed")
		case status != nil && status.Err != nil:
			return StatusFailed, fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
		case rpc.MeetsCommitment(status, c.commitment):
			return StatusConfirmed, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return StatusUnconfirmed, fmt.Errorf("%w (waited %v)", ErrConfirmationTimeout, c.timeout)
		}
		if err := sleep(ctx, min(backoff, remaining)); err != nil {
			return StatusUnconfirmed, fmt.Errorf("%w: %w", ErrConfirmationTimeout, err)
		}
		backoff = nextBackoff(backoff, c.maxBackoff)
	}
}

func nextBackoff(cur, ceiling time.Duration) time.Duration {
	cur *= 2
	if cur > ceiling {
		return ceiling
	}
	return cur
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
