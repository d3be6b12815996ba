package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL:      srv.URL,
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		RetryBackoff: 5 * time.Millisecond,
	})
}

func decodeRequest(t *testing.T, r *http.Request) rpcRequest {
	t.Helper()
	var req rpcRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestCall_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":42}}`))
	})

	bal, err := c.GetBalance(context.Background(), solana.SystemProgramID)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bal)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCall_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetBalance(context.Background(), solana.SystemProgramID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendTransaction_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.MemoProgramID, nil, []byte("hi"))},
		solana.Hash{},
		solana.TransactionPayer(solana.NewWallet().PublicKey()),
	)
	require.NoError(t, err)

	_, err = c.SendTransaction(context.Background(), tx, DefaultSendOptions())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendTransaction_RPCError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "sendTransaction", req.Method)

		var cfg map[string]any
		require.NoError(t, json.Unmarshal(req.Params[1], &cfg))
		assert.Equal(t, "base64", cfg["encoding"])
		assert.Equal(t, false, cfg["skipPreflight"])
		assert.EqualValues(t, 3, cfg["maxRetries"])

		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32002,"message":"Blockhash not found"}}`))
	})

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.MemoProgramID, nil, []byte("hi"))},
		solana.Hash{},
		solana.TransactionPayer(solana.NewWallet().PublicKey()),
	)
	require.NoError(t, err)

	_, err = c.SendTransaction(context.Background(), tx, DefaultSendOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Blockhash not found")

	var rpcErr *RPCError
	assert.ErrorAs(t, err, &rpcErr)
}

func TestGetTokenAccountsByOwner(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "getTokenAccountsByOwner", req.Method)

		var filter map[string]string
		require.NoError(t, json.Unmarshal(req.Params[1], &filter))
		assert.Equal(t, mint.String(), filter["mint"])

		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[{"pubkey":"acc1","account":{"data":{"parsed":{"info":{"mint":"` + mint.String() + `","owner":"` + owner.String() + `","tokenAmount":{"amount":"1500000","decimals":6,"uiAmountString":"1.5"}}}}}}]}}`))
	})

	accs, err := c.GetTokenAccountsByOwner(context.Background(), owner, mint)
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, "acc1", accs[0].Pubkey)
	assert.Equal(t, "1.5", accs[0].Amount.UIAmountString)
	assert.Equal(t, 6, accs[0].Amount.Decimals)
}

func TestGetSignatureStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[null]}}`))
	})

	st, err := c.GetSignatureStatus(context.Background(), "sig")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestMeetsCommitment(t *testing.T) {
	assert.False(t, MeetsCommitment(nil, "confirmed"))
	assert.False(t, MeetsCommitment(&SignatureStatus{ConfirmationStatus: "processed"}, "confirmed"))
	assert.True(t, MeetsCommitment(&SignatureStatus{ConfirmationStatus: "confirmed"}, "confirmed"))
	assert.True(t, MeetsCommitment(&SignatureStatus{ConfirmationStatus: "finalized"}, "confirmed"))
	assert.False(t, MeetsCommitment(&SignatureStatus{ConfirmationStatus: "confirmed"}, "finalized"))
}
