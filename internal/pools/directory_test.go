package pools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key() string { return solana.NewWallet().PublicKey().String() }

// rawPool builds a syntactically valid v4 entry for the given mints.
func rawPool(base, quote string) RawPool {
	return RawPool{
		ID: key(), BaseMint: base, QuoteMint: quote, LPMint: key(),
		BaseDecimals: 9, QuoteDecimals: 6, LPDecimals: 9, Version: 4,
		ProgramID: "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
		Authority: key(), OpenOrders: key(), TargetOrders: key(),
		BaseVault: key(), QuoteVault: key(), WithdrawQueue: key(), LPVault: key(),
		MarketVersion: 3, MarketProgramID: "srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX",
		MarketID: key(), MarketAuthority: key(), MarketBaseVault: key(), MarketQuoteVault: key(),
		MarketBids: key(), MarketAsks: key(), MarketEventQueue: key(),
	}
}

func marshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

type fakeSource struct {
	mu       sync.Mutex
	raws     []json.RawMessage
	err      error
	calls    atomic.Int32
	delay    time.Duration
	honorCtx bool
}

func (f *fakeSource) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.honorCtx {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raws, f.err
}

func (f *fakeSource) set(raws []json.RawMessage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raws, f.err = raws, err
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFindPool_Symmetric(t *testing.T) {
	sol, usdc, other := key(), key(), key()
	p := rawPool(sol, usdc)
	src := &fakeSource{raws: []json.RawMessage{marshal(t, p), marshal(t, rawPool(other, usdc))}}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet()})
	ctx := context.Background()

	ab, err := d.FindPool(ctx, sol, usdc)
	require.NoError(t, err)
	ba, err := d.FindPool(ctx, usdc, sol)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, p.ID, ab.ID.String())
	assert.Equal(t, int32(1), src.calls.Load(), "lookups reuse the cached list")

	dir, err := ab.Direction(solana.MustPublicKeyFromBase58(usdc))
	require.NoError(t, err)
	assert.False(t, dir)
}

func TestFindPool_NoLiquidity(t *testing.T) {
	src := &fakeSource{raws: []json.RawMessage{marshal(t, rawPool(key(), key()))}}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet()})

	_, err := d.FindPool(context.Background(), key(), key())
	assert.ErrorIs(t, err, ErrNoLiquidityPool)
}

func TestEnsureLoaded_DropsBadEntries(t *testing.T) {
	good := rawPool(key(), key())
	badKey := rawPool(key(), key())
	badKey.BaseVault = "not-base58!"
	v5 := rawPool(key(), key())
	v5.Version = 5

	src := &fakeSource{raws: []json.RawMessage{
		marshal(t, good),
		marshal(t, badKey),
		marshal(t, v5),
		json.RawMessage(`{"id": 12}`),
	}}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet()})

	require.NoError(t, d.EnsureLoaded(context.Background()))
	st := d.Stats()
	assert.True(t, st.Loaded)
	assert.Equal(t, 1, st.Pools)
	assert.Equal(t, 3, st.Dropped)
}

func TestEnsureLoaded_ConcurrentCallersShareFetch(t *testing.T) {
	src := &fakeSource{raws: []json.RawMessage{marshal(t, rawPool(key(), key()))}, delay: 50 * time.Millisecond}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.EnsureLoaded(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestEnsureLoaded_FetchError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet()})

	err := d.EnsureLoaded(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch liquidity pools")
	assert.False(t, d.Stats().Loaded)
}

func TestInvalidate_Refetches(t *testing.T) {
	a, b := key(), key()
	src := &fakeSource{raws: []json.RawMessage{marshal(t, rawPool(a, b))}}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet()})
	ctx := context.Background()

	_, err := d.FindPool(ctx, a, b)
	require.NoError(t, err)

	src.set([]json.RawMessage{}, nil)
	d.Invalidate()

	_, err = d.FindPool(ctx, a, b)
	assert.ErrorIs(t, err, ErrNoLiquidityPool)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestRefreshInterval_StaleSnapshotKeptOnFailure(t *testing.T) {
	a, b := key(), key()
	src := &fakeSource{raws: []json.RawMessage{marshal(t, rawPool(a, b))}}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet(), RefreshInterval: time.Minute})

	clock := time.Now()
	d.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, d.EnsureLoaded(ctx))
	require.NoError(t, d.EnsureLoaded(ctx))
	assert.Equal(t, int32(1), src.calls.Load())

	clock = clock.Add(2 * time.Minute)
	src.set(nil, errors.New("upstream 502"))

	require.NoError(t, d.EnsureLoaded(ctx), "stale snapshot keeps serving")
	assert.Equal(t, int32(2), src.calls.Load())

	_, err := d.FindPool(ctx, a, b)
	assert.NoError(t, err)
}

func TestHTTPSource(t *testing.T) {
	official := rawPool(key(), key())
	unofficial := rawPool(key(), key())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":       "Raydium Mainnet Liquidity Pools",
			"official":   []RawPool{official},
			"unOfficial": []RawPool{unofficial},
		})
	}))
	defer srv.Close()

	raws, err := NewHTTPSource(srv.URL, time.Second, false).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, raws, 1)

	raws, err = NewHTTPSource(srv.URL, time.Second, true).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, raws, 2)
}

func TestHTTPSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second, false).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestEnsureLoaded_OutlivesCallerContext(t *testing.T) {
	src := &fakeSource{raws: []json.RawMessage{marshal(t, rawPool(key(), key()))}, honorCtx: true}
	d := NewDirectory(DirectoryConfig{Source: src, Logger: quiet()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, d.EnsureLoaded(ctx))
	assert.Equal(t, 1, d.Stats().Pools)
}
