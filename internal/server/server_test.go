package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/events"
	"github.com/fartswap/fartswap-core/internal/flags"
	"github.com/fartswap/fartswap-core/internal/pools"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/session"
	"github.com/fartswap/fartswap-core/internal/swap"
	"github.com/fartswap/fartswap-core/internal/tokens"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

type fakeTokens struct{}

func (fakeTokens) Load(ctx context.Context) tokens.LoadResult {
	return tokens.LoadResult{Catalog: tokens.Fallback()}
}

func (fakeTokens) Import(ctx context.Context, mint string) (tokens.Descriptor, error) {
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return tokens.Descriptor{}, fmt.Errorf("%w: %s", tokens.ErrInvalidMint, mint)
	}
	if d, ok := tokens.Fallback().Find(mint); ok {
		return d, nil
	}
	return tokens.Descriptor{}, fmt.Errorf("%w: %s", tokens.ErrTokenNotFound, mint)
}

type fakeQuotes struct {
	err error
}

func (f *fakeQuotes) QuotePair(ctx context.Context, req quote.Request) (*quote.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &quote.Result{
		InputMint:   req.From.Mint,
		OutputMint:  req.To.Mint,
		AmountIn:    req.Amount,
		AmountOut:   req.Amount.Mul(decimal.NewFromInt(150)),
		PriceImpact: decimal.RequireFromString("0.25"),
	}, nil
}

type fakeBalances struct{}

func (fakeBalances) GetBalance(ctx context.Context, mint, owner string) decimal.Decimal {
	return decimal.RequireFromString("4")
}

type fakePools struct {
	refreshErr error
	refreshes  int
}

func (f *fakePools) Stats() pools.Stats {
	return pools.Stats{Pools: 2, Loaded: true}
}

func (f *fakePools) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

type fakeSwapper struct {
	mu      sync.Mutex
	receipt *swap.Receipt
	err     error
	calls   int
}

func (f *fakeSwapper) Execute(ctx context.Context, req swap.Request, w wallet.Wallet) (*swap.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.receipt, f.err
}

type fakeFlags struct {
	mu    sync.Mutex
	items map[string]bool
}

func (f *fakeFlags) Upsert(ctx context.Context, key string, value bool) (*flags.Flag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return &flags.Flag{Key: key, Value: value}, nil
}

func (f *fakeFlags) Get(ctx context.Context, key string) (*flags.Flag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	if !ok {
		return nil, flags.ErrNotFound
	}
	return &flags.Flag{Key: key, Value: v}, nil
}

func (f *fakeFlags) Enabled(ctx context.Context, key string, fallback bool) (bool, error) {
	fl, err := f.Get(ctx, key)
	if errors.Is(err, flags.ErrNotFound) {
		return fallback, nil
	}
	return fl.Value, nil
}

func (f *fakeFlags) List(ctx context.Context) ([]*flags.Flag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*flags.Flag, 0, len(f.items))
	for k, v := range f.items {
		out = append(out, &flags.Flag{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeFlags) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

type fakeHistory struct {
	items []*events.SwapEvent
	limit int64
}

func (f *fakeHistory) Recent(ctx context.Context, limit int64) ([]*events.SwapEvent, error) {
	f.limit = limit
	if int64(len(f.items)) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type signerStub struct{ pub solana.PublicKey }

func (s signerStub) PublicKey() solana.PublicKey { return s.pub }
func (s signerStub) Connected() bool             { return true }
func (s signerStub) CanSign() bool               { return true }
func (s signerStub) SignTransaction(context.Context, *solana.Transaction) error {
	return nil
}

type testEnv struct {
	apiKey string
	h      *Handlers
	srv    *Server
	quotes *fakeQuotes
	pools  *fakePools
	swaps  *fakeSwapper
}

func newEnv(t *testing.T, cfg ServerConfig, withFlags bool) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{apiKey: cfg.APIKey, quotes: &fakeQuotes{}, pools: &fakePools{}, swaps: &fakeSwapper{}}
	mgr := session.NewManager(session.Deps{
		Catalog:  fakeTokens{},
		Balances: fakeBalances{},
		Quotes:   env.quotes,
		Swaps:    env.swaps,
		Logger:   logger,
	}, time.Minute)

	env.h = &Handlers{
		Sessions: mgr,
		Tokens:   fakeTokens{},
		Balances: fakeBalances{},
		Quotes:   env.quotes,
		Pools:    env.pools,
		Signer:   signerStub{pub: solana.NewWallet().PublicKey()},
		Logger:   logger,
	}
	if withFlags {
		env.h.Flags = &fakeFlags{items: map[string]bool{}}
	}

	srv, err := NewServer(ServerDeps{Handlers: env.h, Config: cfg})
	require.NoError(t, err)
	env.srv = srv
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.apiKey != "" {
		req.Header.Set("X-API-Key", e.apiKey)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createSession(t *testing.T) session.Snapshot {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[session.Snapshot](t, rec)
}

func TestHealth(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/v1/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HealthResponse](t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.Pools.Pools)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decode[ErrorResponse](t, rec).Code)
}

func TestTokens_Search(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)

	rec := env.do(t, http.MethodGet, "/v1/tokens?q=usdc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[TokensResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, constants.MintUSDC, resp.Items[0].Mint)

	rec = env.do(t, http.MethodGet, "/v1/tokens?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToken_ResolveAndErrors(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)

	rec := env.do(t, http.MethodGet, "/v1/tokens/"+constants.MintFARTSWAP, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FARTSWAP", decode[tokens.Descriptor](t, rec).Symbol)

	rec = env.do(t, http.MethodGet, "/v1/tokens/"+solana.NewWallet().PublicKey().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/tokens/not-a-mint", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBalance(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	owner := solana.NewWallet().PublicKey().String()

	rec := env.do(t, http.MethodGet, "/v1/balances/"+owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BalanceResponse](t, rec)
	assert.Equal(t, constants.MintSOL, resp.Mint)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(4)))

	rec = env.do(t, http.MethodGet, "/v1/balances/xyz", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuote(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	path := fmt.Sprintf("/v1/quote?inputMint=%s&outputMint=%s&amount=2&slippage=0.5", constants.MintSOL, constants.MintUSDC)

	rec := env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "300", resp["amount_out"])
	assert.Equal(t, "0.25%", resp["price_impact_display"])
}

func TestQuote_BadInput(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)

	for _, q := range []string{
		"outputMint=" + constants.MintUSDC + "&amount=1",
		"inputMint=" + constants.MintSOL + "&amount=1",
		"inputMint=" + constants.MintSOL + "&outputMint=" + constants.MintUSDC + "&amount=0",
		"inputMint=" + constants.MintSOL + "&outputMint=" + constants.MintUSDC + "&amount=1&slippage=-2",
	} {
		rec := env.do(t, http.MethodGet, "/v1/quote?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestQuote_NoLiquidity(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	env.quotes.err = fmt.Errorf("find pool: %w", pools.ErrNoLiquidityPool)
	path := fmt.Sprintf("/v1/quote?inputMint=%s&outputMint=%s&amount=1", constants.MintSOL, constants.MintUSDC)

	rec := env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, string(swap.KindNoLiquidity), resp.Kind)
	assert.False(t, resp.Retryable)
}

func TestPools(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)

	rec := env.do(t, http.MethodPost, "/v1/pools/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.pools.refreshes)

	rec = env.do(t, http.MethodGet, "/v1/pools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[pools.Stats](t, rec).Loaded)
}

func TestSession_Flow(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	snap := env.createSession(t)
	assert.Equal(t, session.StateReady, snap.State)
	require.NotNil(t, snap.From)
	assert.Equal(t, constants.MintSOL, snap.From.Mint)

	base := "/v1/sessions/" + snap.ID

	rec := env.do(t, http.MethodPut, base+"/to", MintRequest{Mint: constants.MintUSDC})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "USDC", decode[session.Snapshot](t, rec).To.Symbol)

	rec = env.do(t, http.MethodPut, base+"/amount", AmountRequest{Amount: "2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "300", decode[session.Snapshot](t, rec).Output)

	rec = env.do(t, http.MethodPut, base+"/amount", AmountRequest{Amount: "0"})
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[session.Snapshot](t, rec)
	assert.Equal(t, "0", snap.Output)
	assert.Equal(t, "0", snap.PriceImpact)

	rec = env.do(t, http.MethodPost, base+"/flip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.MintUSDC, decode[session.Snapshot](t, rec).From.Mint)

	rec = env.do(t, http.MethodPut, base+"/slippage", SlippageRequest{Slippage: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[NotificationsResponse](t, rec).Items, 1)

	rec = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_WalletAndFraction(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	base := "/v1/sessions/" + env.createSession(t).ID

	rec := env.do(t, http.MethodPut, base+"/wallet", WalletRequest{Address: "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	owner := solana.NewWallet().PublicKey().String()
	rec = env.do(t, http.MethodPut, base+"/wallet", WalletRequest{Address: owner})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, owner, snap.Wallet)
	assert.False(t, snap.CanSign)
	assert.True(t, snap.Balance.Equal(decimal.NewFromInt(4)))

	rec = env.do(t, http.MethodPost, base+"/fraction", FractionRequest{Percent: decimal.NewFromInt(50)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", decode[session.Snapshot](t, rec).Amount)

	rec = env.do(t, http.MethodDelete, base+"/wallet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[session.Snapshot](t, rec).Wallet)
}

func TestSwap_DisconnectedWallet(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	base := "/v1/sessions/" + env.createSession(t).ID
	env.do(t, http.MethodPut, base+"/amount", AmountRequest{Amount: "1"})

	rec := env.do(t, http.MethodPost, base+"/swap", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, string(swap.KindUserInput), resp.Kind)
	assert.Equal(t, 0, env.swaps.calls)
}

func TestSwap_WithSigner(t *testing.T) {
	env := newEnv(t, ServerConfig{APIKey: "secret"}, false)
	env.swaps.receipt = &swap.Receipt{Signature: "5sig", Status: swap.StatusConfirmed}
	base := "/v1/sessions/" + env.createSession(t).ID

	rec := env.do(t, http.MethodPut, base+"/wallet", WalletRequest{Signer: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[session.Snapshot](t, rec).CanSign)
	env.do(t, http.MethodPut, base+"/amount", AmountRequest{Amount: "1"})

	rec = env.do(t, http.MethodPost, base+"/swap", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[SwapResponse](t, rec)
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, "5sig", resp.Receipt.Signature)
	assert.Empty(t, resp.Session.Amount)
	assert.Equal(t, 1, env.swaps.calls)
}

func TestConnectWallet_SignerRequiresAPIKey(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	base := "/v1/sessions/" + env.createSession(t).ID

	rec := env.do(t, http.MethodPut, base+"/wallet", WalletRequest{Signer: true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[session.Snapshot](t, rec)
	assert.Empty(t, snap.Wallet)
	assert.False(t, snap.CanSign)

	rec = env.do(t, http.MethodPost, base+"/swap", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.swaps.calls)
}

func TestSwap_UnconfirmedReturnsReceipt(t *testing.T) {
	env := newEnv(t, ServerConfig{APIKey: "secret"}, false)
	env.swaps.receipt = &swap.Receipt{Signature: "5sig", Status: swap.StatusUnconfirmed}
	env.swaps.err = swap.ErrConfirmationTimeout
	base := "/v1/sessions/" + env.createSession(t).ID
	env.do(t, http.MethodPut, base+"/wallet", WalletRequest{Signer: true})
	env.do(t, http.MethodPut, base+"/amount", AmountRequest{Amount: "1"})

	rec := env.do(t, http.MethodPost, base+"/swap", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decode[SwapResponse](t, rec)
	require.NotNil(t, resp.Receipt)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(swap.KindUnconfirmed), resp.Error.Kind)
	assert.Equal(t, "1", resp.Session.Amount)
}

func TestSwap_DisabledByFlag(t *testing.T) {
	env := newEnv(t, ServerConfig{}, true)
	base := "/v1/sessions/" + env.createSession(t).ID

	rec := env.do(t, http.MethodPost, "/v1/flags", FlagUpsertRequest{Key: constants.FlagSwapsEnabled, Value: false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/swap", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 0, env.swaps.calls)
}

func TestFlags(t *testing.T) {
	env := newEnv(t, ServerConfig{}, true)

	rec := env.do(t, http.MethodPost, "/v1/flags", FlagUpsertRequest{Key: "bad key!", Value: true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/flags/quotes.beta", FlagUpdateRequest{Value: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/flags/quotes.beta", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[flags.Flag](t, rec).Value)

	rec = env.do(t, http.MethodDelete, "/v1/flags/quotes.beta", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/flags/quotes.beta", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlags_NotConfigured(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/v1/flags", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecentSwaps(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	rec := env.do(t, http.MethodGet, "/v1/swaps/recent", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	hist := &fakeHistory{items: []*events.SwapEvent{
		{Signature: "sig2", Pair: "SOL-FARTSWAP", Status: "confirmed"},
		{Signature: "sig1", Pair: "SOL-FARTSWAP", Status: "failed"},
	}}
	env.h.History = hist

	rec = env.do(t, http.MethodGet, "/v1/swaps/recent?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[struct {
		Items []*events.SwapEvent `json:"items"`
	}](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "sig2", resp.Items[0].Signature)
	assert.Equal(t, int64(1), hist.limit)

	for _, q := range []string{"limit=0", "limit=201", "limit=abc"} {
		rec = env.do(t, http.MethodGet, "/v1/swaps/recent?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestAPIKey(t *testing.T) {
	env := newEnv(t, ServerConfig{APIKey: "secret"}, false)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionEvents_Websocket(t *testing.T) {
	env := newEnv(t, ServerConfig{}, false)
	id := env.createSession(t).ID

	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first session.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, session.EventState, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, id, first.Snapshot.ID)

	rec := env.do(t, http.MethodPut, "/v1/sessions/"+id+"/amount", AmountRequest{Amount: "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	for {
		var ev session.Event
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Snapshot != nil && ev.Snapshot.Output == "150" {
			break
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{swap.ErrInvalidAmount, http.StatusBadRequest},
		{pools.ErrNoLiquidityPool, http.StatusNotFound},
		{quote.ErrQuoteUnavailable, http.StatusUnprocessableEntity},
		{swap.ErrTransactionFailed, http.StatusUnprocessableEntity},
		{swap.ErrConfirmationTimeout, http.StatusAccepted},
		{session.ErrBusy, http.StatusConflict},
		{session.ErrQuoting, http.StatusConflict},
		{tokens.ErrTokenNotFound, http.StatusNotFound},
		{errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
