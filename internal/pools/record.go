package pools

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/fartswap/fartswap-core/internal/constants"
)

// RawPool is one entry of the Raydium liquidity JSON.
type RawPool struct {
	ID               string `json:"id"`
	BaseMint         string `json:"baseMint"`
	QuoteMint        string `json:"quoteMint"`
	LPMint           string `json:"lpMint"`
	BaseDecimals     uint8  `json:"baseDecimals"`
	QuoteDecimals    uint8  `json:"quoteDecimals"`
	LPDecimals       uint8  `json:"lpDecimals"`
	Version          int    `json:"version"`
	ProgramID        string `json:"programId"`
	Authority        string `json:"authority"`
	OpenOrders       string `json:"openOrders"`
	TargetOrders     string `json:"targetOrders"`
	BaseVault        string `json:"baseVault"`
	QuoteVault       string `json:"quoteVault"`
	WithdrawQueue    string `json:"withdrawQueue"`
	LPVault          string `json:"lpVault"`
	MarketVersion    int    `json:"marketVersion"`
	MarketProgramID  string `json:"marketProgramId"`
	MarketID         string `json:"marketId"`
	MarketAuthority  string `json:"marketAuthority"`
	MarketBaseVault  string `json:"marketBaseVault"`
	MarketQuoteVault string `json:"marketQuoteVault"`
	MarketBids       string `json:"marketBids"`
	MarketAsks       string `json:"marketAsks"`
	MarketEventQueue string `json:"marketEventQueue"`
}

// Record is a parsed, ready-to-use AMM v4 pool.
type Record struct {
	ID            solana.PublicKey
	BaseMint      solana.PublicKey
	QuoteMint     solana.PublicKey
	LPMint        solana.PublicKey
	BaseDecimals  uint8
	QuoteDecimals uint8
	LPDecimals    uint8
	Version       int

	ProgramID    solana.PublicKey
	Authority    solana.PublicKey
	OpenOrders   solana.PublicKey
	TargetOrders solana.PublicKey
	BaseVault    solana.PublicKey
	QuoteVault   solana.PublicKey

	MarketVersion    int
	MarketProgramID  solana.PublicKey
	MarketID         solana.PublicKey
	MarketAuthority  solana.PublicKey
	MarketBaseVault  solana.PublicKey
	MarketQuoteVault solana.PublicKey
	MarketBids       solana.PublicKey
	MarketAsks       solana.PublicKey
	MarketEventQueue solana.PublicKey

	FeeNumerator   uint64
	FeeDenominator uint64
}

// Has reports whether mint is one side of the pool.
func (r Record) Has(mint solana.PublicKey) bool {
	return r.BaseMint.Equals(mint) || r.QuoteMint.Equals(mint)
}

// Direction reports whether a swap from inputMint sells base for quote.
func (r Record) Direction(inputMint solana.PublicKey) (baseToQuote bool, err error) {
	switch {
	case r.BaseMint.Equals(inputMint):
		return true, nil
	case r.QuoteMint.Equals(inputMint):
		return false, nil
	default:
		return false, fmt.Errorf("mint %s not in pool %s", inputMint, r.ID)
	}
}

// Vaults returns the pool vaults ordered as (input side, output side).
func (r Record) Vaults(baseToQuote bool) (in, out solana.PublicKey) {
	if baseToQuote {
		return r.BaseVault, r.QuoteVault
	}
	return r.QuoteVault, r.BaseVault
}

// Convert validates a raw entry and parses every account key.
func Convert(raw RawPool) (Record, error) {
	if raw.Version != 4 {
		return Record{}, fmt.Errorf("unsupported pool version %d", raw.Version)
	}

	p := &keyParser{}
	rec := Record{
		ID:            p.parse("id", raw.ID),
		BaseMint:      p.parse("baseMint", raw.BaseMint),
		QuoteMint:     p.parse("quoteMint", raw.QuoteMint),
		LPMint:        p.parse("lpMint", raw.LPMint),
		BaseDecimals:  raw.BaseDecimals,
		QuoteDecimals: raw.QuoteDecimals,
		LPDecimals:    raw.LPDecimals,
		Version:       raw.Version,

		ProgramID:    p.parse("programId", raw.ProgramID),
		Authority:    p.parse("authority", raw.Authority),
		OpenOrders:   p.parse("openOrders", raw.OpenOrders),
		TargetOrders: p.parse("targetOrders", raw.TargetOrders),
		BaseVault:    p.parse("baseVault", raw.BaseVault),
		QuoteVault:   p.parse("quoteVault", raw.QuoteVault),

		MarketVersion:    raw.MarketVersion,
		MarketProgramID:  p.parse("marketProgramId", raw.MarketProgramID),
		MarketID:         p.parse("marketId", raw.MarketID),
		MarketAuthority:  p.parse("marketAuthority", raw.MarketAuthority),
		MarketBaseVault:  p.parse("marketBaseVault", raw.MarketBaseVault),
		MarketQuoteVault: p.parse("marketQuoteVault", raw.MarketQuoteVault),
		MarketBids:       p.parse("marketBids", raw.MarketBids),
		MarketAsks:       p.parse("marketAsks", raw.MarketAsks),
		MarketEventQueue: p.parse("marketEventQueue", raw.MarketEventQueue),

		FeeNumerator:   constants.RaydiumFeeNumerator,
		FeeDenominator: constants.RaydiumFeeDenominator,
	}
	if p.err != nil {
		return Record{}, p.err
	}
	if rec.BaseMint.Equals(rec.QuoteMint) {
		return Record{}, fmt.Errorf("pool %s has identical base and quote mint", rec.ID)
	}
	return rec, nil
}

type keyParser struct {
	err error
}

func (p *keyParser) parse(field, value string) solana.PublicKey {
	if p.err != nil {
		return solana.PublicKey{}
	}
	if value == "" {
		p.err = fmt.Errorf("%s is empty", field)
		return solana.PublicKey{}
	}
	k, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", field, err)
		return solana.PublicKey{}
	}
	return k
}
