package events

import (
	"context"
	"time"
)

// SwapEvent describes one swap attempt that reached the network.
type SwapEvent struct {
	Signature  string    `json:"signature"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Pair       string    `json:"pair"`
	Owner      string    `json:"owner"`
	InputMint  string    `json:"input_mint"`
	OutputMint string    `json:"output_mint"`
	TokenIn    string    `json:"token_in"`
	TokenOut   string    `json:"token_out"`
	AmountIn   string    `json:"amount_in"`
	MinOut     string    `json:"min_amount_out"`
	QuotedOut  string    `json:"quoted_amount_out"`
	Pool       string    `json:"pool"`
	Dex        string    `json:"dex"`
	Error      string    `json:"error,omitempty"`
}

// Publisher delivers swap events. Callers treat delivery as best effort.
type Publisher interface {
	PublishSwap(ctx context.Context, ev *SwapEvent) error
}

// History lists recently published events, newest first.
type History interface {
	Recent(ctx context.Context, limit int64) ([]*SwapEvent, error)
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishSwap(context.Context, *SwapEvent) error { return nil }
