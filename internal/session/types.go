package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/swap"
	"github.com/fartswap/fartswap-core/internal/tokens"
)

// State is the session's activity. Errors are reported as notifications,
// never as a state.
type State string

const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateQuoting  State = "quoting"
	StateSwapping State = "swapping"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one user-facing message.
type Notification struct {
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Kind      swap.ErrorKind `json:"kind,omitempty"`
	Signature string         `json:"signature,omitempty"`
	At        time.Time      `json:"at"`
}

// Snapshot is a consistent copy of the session's visible state.
type Snapshot struct {
	ID          string             `json:"id"`
	State       State              `json:"state"`
	Wallet      string             `json:"wallet,omitempty"`
	CanSign     bool               `json:"can_sign"`
	From        *tokens.Descriptor `json:"from,omitempty"`
	To          *tokens.Descriptor `json:"to,omitempty"`
	Amount      string             `json:"amount"`
	Output      string             `json:"estimated_output"`
	PriceImpact string             `json:"price_impact"`
	Slippage    string             `json:"slippage"`
	Balance     decimal.Decimal    `json:"balance"`
	Quote       *quote.Result      `json:"quote,omitempty"`
	LastSwap    *swap.Receipt      `json:"last_swap,omitempty"`
	Fallback    bool               `json:"fallback_tokens"`
	QuoteSeq    uint64             `json:"quote_seq"`
	BalanceSeq  uint64             `json:"balance_seq"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type EventType string

const (
	EventState        EventType = "state"
	EventNotification EventType = "notification"
)

// Event is pushed to subscribers after every visible change.
type Event struct {
	Type         EventType     `json:"type"`
	Snapshot     *Snapshot     `json:"snapshot,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}
