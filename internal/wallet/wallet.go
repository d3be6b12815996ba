// Package wallet models the signing capability a swap needs: an address, a
// connection state and the ability to sign.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrCannotSign = errors.New("wallet cannot sign transactions")

// Wallet is the capability handed to the swap executor. A connected wallet
// always has a public key; signing may still be unavailable.
type Wallet interface {
	PublicKey() solana.PublicKey
	Connected() bool
	CanSign() bool
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Disconnected is the wallet before the user connects one.
type Disconnected struct{}

func (Disconnected) PublicKey() solana.PublicKey { return solana.PublicKey{} }
func (Disconnected) Connected() bool             { return false }
func (Disconnected) CanSign() bool               { return false }
func (Disconnected) SignTransaction(context.Context, *solana.Transaction) error {
	return ErrCannotSign
}

// Watch is a read-only wallet: balances resolve, swaps do not.
type Watch struct {
	pub solana.PublicKey
}

func NewWatch(address string) (*Watch, error) {
	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid address: %w", err)
	}
	return &Watch{pub: pub}, nil
}

func (w *Watch) PublicKey() solana.PublicKey { return w.pub }
func (w *Watch) Connected() bool             { return true }
func (w *Watch) CanSign() bool               { return false }
func (w *Watch) SignTransaction(context.Context, *solana.Transaction) error {
	return ErrCannotSign
}

// Address returns the base58 address, or "" when disconnected.
func Address(w Wallet) string {
	if w == nil || !w.Connected() {
		return ""
	}
	return w.PublicKey().String()
}
