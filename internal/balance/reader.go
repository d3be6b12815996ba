package balance

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/rpc"
)

const lamportDecimals = 9

// RPC is the subset of the RPC client the reader needs.
type RPC interface {
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetTokenAccountsByOwner(ctx context.Context, owner, mint solana.PublicKey) ([]rpc.TokenAccount, error)
}

// Reader reports how much of a token a wallet holds. It never fails: any
// problem is logged and reported as a zero balance.
type Reader struct {
	rpc    RPC
	logger *logrus.Logger
}

func NewReader(client RPC, logger *logrus.Logger) *Reader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Reader{rpc: client, logger: logger}
}

// GetBalance returns the owner's balance of mint in display units. The SOL
// mint reads the native lamport balance, which is what swaps spend.
func (r *Reader) GetBalance(ctx context.Context, mint, owner string) decimal.Decimal {
	log := r.logger.WithFields(logrus.Fields{"mint": mint, "owner": owner})

	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		log.WithError(err).Warn("balance: invalid owner address")
		return decimal.Zero
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		log.WithError(err).Warn("balance: invalid mint address")
		return decimal.Zero
	}

	if mint == constants.MintSOL {
		lamports, err := r.rpc.GetBalance(ctx, ownerKey)
		if err != nil {
			log.WithError(err).Warn("balance: getBalance failed")
			return decimal.Zero
		}
		return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportDecimals)
	}

	accounts, err := r.rpc.GetTokenAccountsByOwner(ctx, ownerKey, mintKey)
	if err != nil {
		log.WithError(err).Warn("balance: getTokenAccountsByOwner failed")
		return decimal.Zero
	}

	total := decimal.Zero
	for _, acc := range accounts {
		raw, ok := new(big.Int).SetString(acc.Amount.Amount, 10)
		if !ok {
			log.WithField("account", acc.Pubkey).Warn("balance: unparseable token amount")
			continue
		}
		total = total.Add(decimal.NewFromBigInt(raw, -int32(acc.Amount.Decimals)))
	}
	return total
}
