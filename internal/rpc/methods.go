package rpc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value uint64 `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		account.String(),
		map[string]any{"commitment": c.commitment},
	}

	if err := c.Call(ctx, "getBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getBalance RPC failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getBalance error: %w", resp.Error)
	}
	return resp.Result.Value, nil
}

// GetTokenAccountsByOwner lists the parsed token accounts an owner holds for a mint.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner, mint solana.PublicKey) ([]TokenAccount, error) {
	var resp struct {
		Result struct {
			Value []struct {
				Pubkey  string `json:"pubkey"`
				Account struct {
					Data struct {
						Parsed struct {
							Info struct {
								Mint        string      `json:"mint"`
								Owner       string      `json:"owner"`
								TokenAmount TokenAmount `json:"tokenAmount"`
							} `json:"info"`
						} `json:"parsed"`
					} `json:"data"`
				} `json:"account"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		owner.String(),
		map[string]any{"mint": mint.String()},
		map[string]any{
			"encoding":   "jsonParsed",
			"commitment": c.commitment,
		},
	}

	if err := c.Call(ctx, "getTokenAccountsByOwner", params, &resp); err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner RPC failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner error: %w", resp.Error)
	}

	out := make([]TokenAccount, 0, len(resp.Result.Value))
	for _, v := range resp.Result.Value {
		info := v.Account.Data.Parsed.Info
		out = append(out, TokenAccount{
			Pubkey: v.Pubkey,
			Mint:   info.Mint,
			Owner:  info.Owner,
			Amount: info.TokenAmount,
		})
	}
	return out, nil
}

// GetTokenAccountBalance returns the raw base-unit balance of a token account.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value TokenAmount `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		account.String(),
		map[string]any{"commitment": c.commitment},
	}

	if err := c.Call(ctx, "getTokenAccountBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getTokenAccountBalance RPC failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getTokenAccountBalance error: %w", resp.Error)
	}

	amount, err := strconv.ParseUint(resp.Result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format %q: %w", resp.Result.Value.Amount, err)
	}
	return amount, nil
}

// AccountExists checks if an account exists on-chain (getAccountInfo != nil).
func (c *Client) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	var resp struct {
		Result struct {
			Value any `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		pubkey.String(),
		map[string]any{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return false, fmt.Errorf("getAccountInfo RPC failed: %w", err)
	}
	if resp.Error != nil {
		return false, fmt.Errorf("getAccountInfo error: %w", resp.Error)
	}
	return resp.Result.Value != nil, nil
}

// GetLatestBlockhash fetches the most recent blockhash at the client commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*Blockhash, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		map[string]any{"commitment": c.commitment},
	}

	if err := c.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return nil, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getLatestBlockhash error: %w", resp.Error)
	}

	return &Blockhash{
		Blockhash:            resp.Result.Value.Blockhash,
		LastValidBlockHeight: resp.Result.Value.LastValidBlockHeight,
	}, nil
}

// SendTransaction submits a signed transaction once. The caller owns retries.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOptions) (string, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	cfg := map[string]any{
		"encoding":            "base64",
		"skipPreflight":       opts.SkipPreflight,
		"preflightCommitment": opts.PreflightCommitment,
	}
	if opts.MaxRetries != nil {
		cfg["maxRetries"] = *opts.MaxRetries
	}

	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		cfg,
	}

	var resp struct {
		Result string    `json:"result"`
		Error  *RPCError `json:"error"`
	}

	if err := c.CallOnce(ctx, "sendTransaction", params, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction RPC failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction error: code=%d: %w", resp.Error.Code, resp.Error)
	}

	return resp.Result, nil
}

// GetSignatureStatus returns the status of one signature, or nil if unknown.
func (c *Client) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	var resp struct {
		Result struct {
			Value []*SignatureStatus `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}

	if err := c.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return nil, fmt.Errorf("getSignatureStatuses RPC failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getSignatureStatuses error: %w", resp.Error)
	}

	if len(resp.Result.Value) == 0 {
		return nil, nil
	}
	return resp.Result.Value[0], nil
}

// MeetsCommitment reports whether a status has reached the wanted level.
func MeetsCommitment(status *SignatureStatus, commitment string) bool {
	if status == nil || status.ConfirmationStatus == "" {
		return false
	}
	switch commitment {
	case "processed":
		return true
	case "confirmed":
		return status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized"
	case "finalized":
		return status.ConfirmationStatus == "finalized"
	default:
		return true
	}
}
