// Package raydium builds Raydium AMM v4 swap transactions.
package raydium

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/fartswap/fartswap-core/internal/pools"
)

// swapBaseInDiscriminator selects the fixed-input swap in the AMM v4 program.
const swapBaseInDiscriminator = 9

// SwapBaseIn spends exactly AmountIn and fails on chain if the output would
// be below MinimumAmountOut.
type SwapBaseIn struct {
	Program          solana.PublicKey
	AmountIn         uint64
	MinimumAmountOut uint64

	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// NewSwapBaseIn lays out the 18 accounts the program expects.
func NewSwapBaseIn(pool pools.Record, userSource, userDest, owner solana.PublicKey, amountIn, minOut uint64) (*SwapBaseIn, error) {
	if pool.ProgramID.IsZero() {
		return nil, fmt.Errorf("pool %s has no program id", pool.ID)
	}
	if userSource.IsZero() || userDest.IsZero() || owner.IsZero() {
		return nil, fmt.Errorf("swap accounts must be set")
	}
	if amountIn == 0 {
		return nil, fmt.Errorf("amount in must be > 0")
	}

	inst := &SwapBaseIn{
		Program:          pool.ProgramID,
		AmountIn:         amountIn,
		MinimumAmountOut: minOut,
	}
	inst.AccountMetaSlice = solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(pool.ID, true, false),
		solana.NewAccountMeta(pool.Authority, false, false),
		solana.NewAccountMeta(pool.OpenOrders, true, false),
		solana.NewAccountMeta(pool.TargetOrders, true, false),
		solana.NewAccountMeta(pool.BaseVault, true, false),
		solana.NewAccountMeta(pool.QuoteVault, true, false),
		solana.NewAccountMeta(pool.MarketProgramID, false, false),
		solana.NewAccountMeta(pool.MarketID, true, false),
		solana.NewAccountMeta(pool.MarketBids, true, false),
		solana.NewAccountMeta(pool.MarketAsks, true, false),
		solana.NewAccountMeta(pool.MarketEventQueue, true, false),
		solana.NewAccountMeta(pool.MarketBaseVault, true, false),
		solana.NewAccountMeta(pool.MarketQuoteVault, true, false),
		solana.NewAccountMeta(pool.MarketAuthority, false, false),
		solana.NewAccountMeta(userSource, true, false),
		solana.NewAccountMeta(userDest, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return inst, nil
}

func (inst *SwapBaseIn) ProgramID() solana.PublicKey {
	return inst.Program
}

func (inst *SwapBaseIn) Accounts() []*solana.AccountMeta {
	return inst.AccountMetaSlice
}

// Data is [u8 9][u64 amountIn][u64 minOut], little endian.
func (inst *SwapBaseIn) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(swapBaseInDiscriminator)

	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint64(inst.AmountIn, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode amount in: %w", err)
	}
	if err := enc.WriteUint64(inst.MinimumAmountOut, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode minimum amount out: %w", err)
	}
	return buf.Bytes(), nil
}
