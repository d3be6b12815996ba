package swap

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fartswap/fartswap-core/internal/events"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/rpc"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newSigner(t *testing.T) *wallet.Keypair {
	t.Helper()
	k, err := wallet.NewKeypair(base58.Encode(solana.NewWallet().PrivateKey))
	require.NoError(t, err)
	return k
}

type fakeChain struct {
	mu sync.Mutex

	sendErrs []error // consumed per send; nil entry means success
	statuses []*rpc.SignatureStatus
	existing map[solana.PublicKey]bool

	sends, statusCalls, calls int
	sent                      []*solana.Transaction
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.SendOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.sends++
	f.sent = append(f.sent, tx)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return tx.Signatures[0].String(), nil
}

func (f *fakeChain) GetSignatureStatus(ctx context.Context, sig string) (*rpc.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.statusCalls++
	if len(f.statuses) == 0 {
		return nil, nil
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return s, nil
}

func (f *fakeChain) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.existing[account], nil
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context) (*rpc.Blockhash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &rpc.Blockhash{Blockhash: solana.Hash{7}.String(), LastValidBlockHeight: 100}, nil
}

func (f *fakeChain) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeQuoter struct {
	res   *quote.Result
	err   error
	calls int
}

func (f *fakeQuoter) QuotePair(ctx context.Context, req quote.Request) (*quote.Result, error) {
	f.calls++
	return f.res, f.err
}

// fastConfirmer shortens backoff so tests run in milliseconds.
func fastConfirmer(chain Sender, timeout time.Duration) *Confirmer {
	c := NewConfirmer(ConfirmerConfig{Sender: chain, Logger: quiet(), SubmitAttempts: 3, ConfirmTimeout: timeout})
	c.initialBackoff = time.Millisecond
	c.maxBackoff = 4 * time.Millisecond
	return c
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishSwap(ctx context.Context, ev *events.SwapEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev.Status)
	return nil
}
