package constants

import "time"

// Upstream list services
const (
	TokenListURL = "https://token.jup.ag/all"
	PoolListURL  = "https://api.raydium.io/v2/sdk/liquidity/mainnet.json"
)

// Commitment levels
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// Swap defaults
const (
	DefaultSlippage       = "1"
	DefaultSubmitAttempts = 3
	// Raydium AMM v4 trade fee.
	RaydiumFeeNumerator   = 25
	RaydiumFeeDenominator = 10000
	BpsDenominator        = 10000
)

// Confirmation polling
const (
	ConfirmInitialBackoff = 500 * time.Millisecond
	ConfirmMaxBackoff     = 4 * time.Second
)

// Redis Pub/Sub channels
const (
	PubSubChannelSwaps  = "fartswap:swaps"
	PubSubChannelPrefix = "fartswap:swaps:pair:"
)

// Recent swap history
const (
	RecentSwapsKey = "fartswap:swaps:recent"
	RecentSwapsMax = 200
)

// Feature flags
const (
	FlagSwapsEnabled = "swaps.enabled"
)

// Mints
const (
	MintSOL      = "So11111111111111111111111111111111111111112"
	MintFARTSWAP = "9FLoRqzWDPpDbxfuHKEesaSnmmRBUJPagsebrWRLpump"
	MintFARTCOIN = "9BB6NFEcjBCtnNLFko2FqVQBq8HHM13kCyYcdQbgpump"
	MintGOAT     = "CzLSujWBLFsSjncfkh59rUFqvafWcY5tzedWJSuypump"
	MintUSDC     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT     = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// Program addresses
var ProgramAddresses = map[string]string{
	"RaydiumAMMv4": "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
	"OpenBook":     "srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX",
}

// PinnedToken is a token shown first in every catalog.
type PinnedToken struct {
	Symbol   string
	Name     string
	Mint     string
	Decimals uint8
	// Logo used when the upstream list has none.
	FallbackLogo string
	// Logo used when the upstream list cannot be fetched at all.
	OfflineLogo string
}

// PinnedTokens in display order.
var PinnedTokens = []PinnedToken{
	{
		Symbol:       "SOL",
		Name:         "Solana",
		Mint:         MintSOL,
		Decimals:     9,
		FallbackLogo: "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/So11111111111111111111111111111111111111112/logo.png",
		OfflineLogo:  "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/So11111111111111111111111111111111111111112/logo.png",
	},
	{
		Symbol:       "FARTSWAP",
		Name:         "FartSwap",
		Mint:         MintFARTSWAP,
		Decimals:     9,
		FallbackLogo: "/CircleFartSwapLogo.png",
		OfflineLogo:  "/fartswap-logo.svg",
	},
	{
		Symbol:       "FARTCOIN",
		Name:         "FartCoin",
		Mint:         MintFARTCOIN,
		Decimals:     9,
		FallbackLogo: "https://pump.mypinata.cloud/ipfs/QmQr3Fz4h1etNsF7oLGMRHiCzhB5y9a7GjyodnF7zLHK1g?img-width=256&img-dpr=2&img-onerror=redirect",
		OfflineLogo:  "/fartcoin-logo.svg",
	},
	{
		Symbol:       "GOAT",
		Name:         "GOAT",
		Mint:         MintGOAT,
		Decimals:     9,
		FallbackLogo: "https://pump.mypinata.cloud/ipfs/QmapAq9WtNrtyaDtjZPAHHNYmpSZAQU6HywwvfSWq4dQVV?img-width=256&img-dpr=2&img-onerror=redirect",
		OfflineLogo:  "/goat-logo.svg",
	},
	{
		Symbol:       "USDC",
		Name:         "USD Coin",
		Mint:         MintUSDC,
		Decimals:     6,
		FallbackLogo: "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v/logo.png",
		OfflineLogo:  "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v/logo.png",
	},
	{
		Symbol:       "USDT",
		Name:         "USDT",
		Mint:         MintUSDT,
		Decimals:     6,
		FallbackLogo: "usdtlogo.svg",
		OfflineLogo:  "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB/logo.png",
	},
}

// Default selection for a new session.
const (
	DefaultFromMint = MintSOL
	DefaultToMint   = MintFARTSWAP
)
