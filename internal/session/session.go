// Package session holds one user's swap form: token selection, amount,
// slippage, wallet, the latest quote and balance, and the notifications the
// user should see. All state lives in an explicit Session value.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/swap"
	"github.com/fartswap/fartswap-core/internal/tokens"
	"github.com/fartswap/fartswap-core/internal/wallet"
)

var (
	ErrNotLoaded       = errors.New("token list is still loading")
	ErrBusy            = errors.New("a swap is already in progress")
	ErrQuoting         = errors.New("price is still being calculated")
	ErrInvalidFraction = errors.New("fraction must be between 0 and 100 percent")
)

const maxNotifications = 50

type Catalog interface {
	Load(ctx context.Context) tokens.LoadResult
	Import(ctx context.Context, mint string) (tokens.Descriptor, error)
}

type Balances interface {
	GetBalance(ctx context.Context, mint, owner string) decimal.Decimal
}

type Quoter interface {
	QuotePair(ctx context.Context, req quote.Request) (*quote.Result, error)
}

type Swapper interface {
	Execute(ctx context.Context, req swap.Request, w wallet.Wallet) (*swap.Receipt, error)
}

type Deps struct {
	Catalog         Catalog
	Balances        Balances
	Quotes          Quoter
	Swaps           Swapper
	Logger          *logrus.Logger
	DefaultSlippage string
}

type Session struct {
	id     string
	deps   Deps
	logger *logrus.Entry
	now    func() time.Time

	mu         sync.Mutex
	state      State
	catalog    *tokens.Catalog
	fallback   bool
	imported   map[string]tokens.Descriptor
	from, to   *tokens.Descriptor
	amount     string
	output     string
	slippage   string
	quote      *quote.Result
	balance    decimal.Decimal
	quoteSeq   uint64
	balanceSeq uint64
	wallet     wallet.Wallet
	lastSwap   *swap.Receipt
	notes      []Notification
	subs       map[int]chan Event
	nextSub    int
	lastActive time.Time
	updatedAt  time.Time
	closed     bool
}

func New(id string, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.DefaultSlippage == "" {
		deps.DefaultSlippage = constants.DefaultSlippage
	}
	s := &Session{
		id:       id,
		deps:     deps,
		logger:   deps.Logger.WithField("session", id),
		now:      time.Now,
		state:    StateLoading,
		imported: make(map[string]tokens.Descriptor),
		output:   "0",
		slippage: deps.DefaultSlippage,
		balance:  decimal.Zero,
		wallet:   wallet.Disconnected{},
		subs:     make(map[int]chan Event),
	}
	s.lastActive = s.now()
	s.updatedAt = s.lastActive
	return s
}

func (s *Session) ID() string { return s.id }

// Load fetches the token catalog and selects the default pair. It never
// fails; a fallback catalog is reported as a warning notification.
func (s *Session) Load(ctx context.Context) {
	res := s.deps.Catalog.Load(ctx)

	s.mu.Lock()
	s.touchLocked()
	s.catalog = res.Catalog
	s.fallback = res.Fallback
	if d, ok := res.Catalog.Find(constants.DefaultFromMint); ok {
		s.from = &d
	}
	if d, ok := res.Catalog.Find(constants.DefaultToMint); ok {
		s.to = &d
	}
	s.state = StateReady
	if res.Warning != "" {
		s.notifyLocked(Notification{Level: LevelWarning, Message: res.Warning})
	}
	s.emitLocked()
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"tokens": res.Catalog.Len(), "fallback": res.Fallback}).Debug("session loaded")
	s.RefreshBalance(ctx)
}

// Catalog returns the session's token list, or nil while loading.
func (s *Session) Catalog() *tokens.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

func (s *Session) SelectFrom(ctx context.Context, mint string) error {
	d, err := s.resolve(ctx, mint)
	if err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.touchLocked()
	s.from = &d
	s.emitLocked()
	s.mu.Unlock()

	s.RefreshBalance(ctx)
	_, _ = s.requote(ctx)
	return nil
}

func (s *Session) SelectTo(ctx context.Context, mint string) error {
	d, err := s.resolve(ctx, mint)
	if err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.touchLocked()
	s.to = &d
	s.emitLocked()
	s.mu.Unlock()

	_, _ = s.requote(ctx)
	return nil
}

// Flip exchanges source and destination, keeping the amount.
func (s *Session) Flip(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateLoading {
		s.mu.Unlock()
		return s.fail(ErrNotLoaded)
	}
	s.touchLocked()
	s.from, s.to = s.to, s.from
	s.emitLocked()
	s.mu.Unlock()

	s.RefreshBalance(ctx)
	_, _ = s.requote(ctx)
	return nil
}

// SetAmount stores the raw amount text. Empty, zero or unparsable input
// clears the quote and resets the estimated output to "0".
func (s *Session) SetAmount(ctx context.Context, amount string) (*quote.Result, error) {
	s.mu.Lock()
	s.touchLocked()
	s.amount = strings.TrimSpace(amount)
	s.mu.Unlock()
	return s.requote(ctx)
}

func (s *Session) SetSlippage(ctx context.Context, pct string) (*quote.Result, error) {
	pct = strings.TrimSpace(pct)
	v, err := decimal.NewFromString(pct)
	if err != nil || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return nil, s.fail(swap.ErrInvalidSlippage)
	}
	s.mu.Lock()
	s.touchLocked()
	s.slippage = pct
	s.mu.Unlock()
	return s.requote(ctx)
}

// UseBalanceFraction sets the amount to pct percent of the current balance:
// 100 is Max, 50 is half. The result is truncated to the token's decimals.
func (s *Session) UseBalanceFraction(ctx context.Context, pct decimal.Decimal) (*quote.Result, error) {
	if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, s.fail(ErrInvalidFraction)
	}
	s.mu.Lock()
	if s.from == nil {
		s.mu.Unlock()
		return nil, s.fail(swap.ErrTokensNotSelected)
	}
	s.touchLocked()
	amt := s.balance.Mul(pct).Div(decimal.NewFromInt(100)).Truncate(int32(s.from.Decimals))
	s.amount = amt.String()
	s.mu.Unlock()
	return s.requote(ctx)
}

func (s *Session) ConnectWallet(ctx context.Context, w wallet.Wallet) {
	if w == nil {
		w = wallet.Disconnected{}
	}
	s.mu.Lock()
	s.touchLocked()
	s.wallet = w
	s.emitLocked()
	s.mu.Unlock()
	s.RefreshBalance(ctx)
}

func (s *Session) DisconnectWallet(ctx context.Context) {
	s.ConnectWallet(ctx, wallet.Disconnected{})
}

// RefreshBalance reads the wallet's balance of the source token. A result
// that arrives after a newer refresh started is discarded.
func (s *Session) RefreshBalance(ctx context.Context) {
	s.mu.Lock()
	s.balanceSeq++
	seq := s.balanceSeq
	owner := wallet.Address(s.wallet)
	if owner == "" || s.from == nil {
		s.balance = decimal.Zero
		s.emitLocked()
		s.mu.Unlock()
		return
	}
	mint := s.from.Mint
	s.mu.Unlock()

	bal := s.deps.Balances.GetBalance(ctx, mint, owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.balanceSeq {
		return
	}
	s.balance = bal
	s.emitLocked()
}

// requote prices the current form. A result superseded by a newer request
// is dropped and (nil, nil) is returned.
func (s *Session) requote(ctx context.Context) (*quote.Result, error) {
	s.mu.Lock()
	s.quoteSeq++
	seq := s.quoteSeq

	amount, err := decimal.NewFromString(s.amount)
	if s.state == StateLoading || s.from == nil || s.to == nil || err != nil || !amount.IsPositive() {
		s.clearQuoteLocked()
		if s.state == StateQuoting {
			s.state = StateReady
		}
		s.emitLocked()
		s.mu.Unlock()
		return nil, nil
	}
	slippage, err := decimal.NewFromString(s.slippage)
	if err != nil {
		slippage = decimal.RequireFromString(constants.DefaultSlippage)
	}
	req := quote.Request{From: *s.from, To: *s.to, Amount: amount, SlippagePct: slippage}
	if s.state != StateSwapping {
		s.state = StateQuoting
	}
	s.emitLocked()
	s.mu.Unlock()

	res, qerr := s.deps.Quotes.QuotePair(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.quoteSeq {
		s.logger.WithField("seq", seq).Debug("discarding stale quote")
		return nil, nil
	}
	if s.state == StateQuoting {
		s.state = StateReady
	}
	if qerr != nil {
		s.clearQuoteLocked()
		s.notifyLocked(Notification{
			Level:   LevelError,
			Message: fmt.Sprintf("Error calculating price: %v", qerr),
			Kind:    swap.Kind(qerr),
		})
		s.emitLocked()
		return nil, qerr
	}
	s.quote = res
	s.output = res.AmountOut.String()
	s.emitLocked()
	return res, nil
}

func (s *Session) clearQuoteLocked() {
	s.quote = nil
	s.output = "0"
}

// Swap executes the current form with the connected wallet. Input problems
// are reported without entering the swapping state.
func (s *Session) Swap(ctx context.Context) (*swap.Receipt, error) {
	s.mu.Lock()
	switch s.state {
	case StateLoading:
		s.mu.Unlock()
		return nil, s.fail(ErrNotLoaded)
	case StateSwapping:
		s.mu.Unlock()
		return nil, s.fail(ErrBusy)
	case StateQuoting:
		s.mu.Unlock()
		return nil, s.fail(ErrQuoting)
	}
	s.touchLocked()
	req := swap.Request{From: s.from, To: s.to, Amount: s.amount, SlippagePct: s.slippage}
	w := s.wallet
	if _, err := swap.Validate(req, w); err != nil {
		s.mu.Unlock()
		return nil, s.fail(err)
	}
	s.state = StateSwapping
	s.emitLocked()
	s.mu.Unlock()

	receipt, err := s.deps.Swaps.Execute(ctx, req, w)

	s.mu.Lock()
	s.state = StateReady
	if receipt != nil {
		s.lastSwap = receipt
	}
	if err != nil {
		n := Notification{Level: LevelError, Message: err.Error(), Kind: swap.Kind(err)}
		if receipt != nil {
			n.Signature = receipt.Signature
		}
		s.notifyLocked(n)
		s.emitLocked()
		s.mu.Unlock()
		s.logger.WithError(err).Warn("swap failed")
		return receipt, err
	}

	s.notifyLocked(Notification{Level: LevelSuccess, Message: "Swap successful!", Signature: receipt.Signature})
	s.amount = ""
	s.quoteSeq++
	s.clearQuoteLocked()
	s.emitLocked()
	s.mu.Unlock()

	s.RefreshBalance(ctx)
	return receipt, nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:         s.id,
		State:      s.state,
		Wallet:     wallet.Address(s.wallet),
		CanSign:    s.wallet.CanSign(),
		Amount:     s.amount,
		Output:     s.output,
		Slippage:   s.slippage,
		Balance:    s.balance,
		Quote:      s.quote,
		LastSwap:   s.lastSwap,
		Fallback:   s.fallback,
		QuoteSeq:   s.quoteSeq,
		BalanceSeq: s.balanceSeq,
		UpdatedAt:  s.updatedAt,
	}
	snap.PriceImpact = "0"
	if s.quote != nil {
		snap.PriceImpact = s.quote.PriceImpactDisplay()
	}
	if s.from != nil {
		d := *s.from
		snap.From = &d
	}
	if s.to != nil {
		d := *s.to
		snap.To = &d
	}
	return snap
}

// Notifications returns the retained notifications, oldest first.
func (s *Session) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.notes))
	copy(out, s.notes)
	return out
}

// Subscribe streams events until cancel is called or the session closes.
// Slow subscribers miss events rather than block the session.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close ends every subscription. Further operations still work but nothing
// is streamed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// LastActive is when a user last touched the session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) resolve(ctx context.Context, mint string) (tokens.Descriptor, error) {
	mint = strings.TrimSpace(mint)
	s.mu.Lock()
	if s.catalog == nil {
		s.mu.Unlock()
		return tokens.Descriptor{}, ErrNotLoaded
	}
	if d, ok := s.catalog.Find(mint); ok {
		s.mu.Unlock()
		return d, nil
	}
	if d, ok := s.imported[mint]; ok {
		s.mu.Unlock()
		return d, nil
	}
	s.mu.Unlock()

	d, err := s.deps.Catalog.Import(ctx, mint)
	if err != nil {
		return tokens.Descriptor{}, err
	}
	s.mu.Lock()
	s.imported[d.Mint] = d
	s.mu.Unlock()
	return d, nil
}

// fail records err as exactly one error notification and returns it.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(Notification{Level: LevelError, Message: err.Error(), Kind: kindOf(err)})
	s.emitLocked()
	return err
}

func kindOf(err error) swap.ErrorKind {
	switch {
	case errors.Is(err, ErrNotLoaded),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrQuoting),
		errors.Is(err, ErrInvalidFraction),
		errors.Is(err, tokens.ErrInvalidMint),
		errors.Is(err, tokens.ErrTokenNotFound):
		return swap.KindUserInput
	}
	return swap.Kind(err)
}

func (s *Session) notifyLocked(n Notification) {
	n.At = s.now()
	s.notes = append(s.notes, n)
	if len(s.notes) > maxNotifications {
		s.notes = s.notes[len(s.notes)-maxNotifications:]
	}
	s.broadcastLocked(Event{Type: EventNotification, Notification: &n})
}

func (s *Session) emitLocked() {
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.broadcastLocked(Event{Type: EventState, Snapshot: &snap})
}

func (s *Session) broadcastLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Session) touchLocked() {
	s.lastActive = s.now()
}
