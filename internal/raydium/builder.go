package raydium

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/fartswap/fartswap-core/internal/pools"
)

// ErrNoSourceAccount means the owner holds no account for a non-SOL input.
var ErrNoSourceAccount = errors.New("source token account does not exist")

// SwapParams describes one fixed-input swap for one owner. Source and
// destination are the owner's associated token accounts for the two mints.
type SwapParams struct {
	Pool         pools.Record
	Owner        solana.PublicKey
	InputMint    solana.PublicKey
	OutputMint   solana.PublicKey
	AmountIn     uint64
	MinAmountOut uint64

	Source       solana.PublicKey
	SourceExists bool
	Dest         solana.PublicKey
	DestExists   bool
}

// BuildSwapInstructions returns the ordered instructions of a swap:
// account setup, SOL wrap, the AMM swap, then SOL unwrap.
//
// A SOL input is wrapped into the owner's wSOL account. Missing accounts are
// created in the same transaction; a wSOL account created here is closed
// afterwards so the remainder returns as SOL. Existing wSOL accounts are left
// alone.
func BuildSwapInstructions(p SwapParams) ([]solana.Instruction, error) {
	if p.InputMint.Equals(p.OutputMint) {
		return nil, fmt.Errorf("input and output mint are the same")
	}
	if !p.Pool.Has(p.InputMint) || !p.Pool.Has(p.OutputMint) {
		return nil, fmt.Errorf("pool %s does not trade %s/%s", p.Pool.ID, p.InputMint, p.OutputMint)
	}

	var ixs []solana.Instruction
	wrapIn := p.InputMint.Equals(solana.SolMint)
	unwrapOut := p.OutputMint.Equals(solana.SolMint)

	if !p.SourceExists {
		if !wrapIn {
			return nil, fmt.Errorf("%w: %s", ErrNoSourceAccount, p.Source)
		}
		ix, err := createATA(p.Owner, p.InputMint)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}
	if wrapIn {
		transfer, err := system.NewTransferInstruction(p.AmountIn, p.Owner, p.Source).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build wrap transfer: %w", err)
		}
		sync, err := token.NewSyncNativeInstruction(p.Source).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build sync native: %w", err)
		}
		ixs = append(ixs, transfer, sync)
	}
	if !p.DestExists {
		ix, err := createATA(p.Owner, p.OutputMint)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}

	swap, err := NewSwapBaseIn(p.Pool, p.Source, p.Dest, p.Owner, p.AmountIn, p.MinAmountOut)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, swap)

	for _, acct := range closeAfter(p, wrapIn, unwrapOut) {
		ix, err := token.NewCloseAccountInstruction(acct, p.Owner, p.Owner, []solana.PublicKey{}).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build close account: %w", err)
		}
		ixs = append(ixs, ix)
	}
	return ixs, nil
}

func closeAfter(p SwapParams, wrapIn, unwrapOut bool) []solana.PublicKey {
	switch {
	case wrapIn && !p.SourceExists:
		return []solana.PublicKey{p.Source}
	case unwrapOut && !p.DestExists:
		return []solana.PublicKey{p.Dest}
	}
	return nil
}

func createATA(owner, mint solana.PublicKey) (solana.Instruction, error) {
	ix, err := associatedtokenaccount.NewCreateInstruction(owner, owner, mint).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("build create token account for %s: %w", mint, err)
	}
	return ix, nil
}

// TokenAccount derives the owner's associated token account for mint.
func TokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive token account for %s: %w", mint, err)
	}
	return ata, nil
}
