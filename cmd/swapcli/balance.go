package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fartswap/fartswap-core/internal/wallet"
)

var balanceToken string

var balanceCmd = &cobra.Command{
	Use:   "balance [owner]",
	Short: "Show a wallet's token balance",
	Long: `Show how much of a token a wallet holds. The owner defaults to the
wallet configured by WALLET_PRIVATE_KEY.

Examples:
  swapcli balance
  swapcli balance --token USDC
  swapcli balance 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin --token FARTSWAP`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&balanceToken, "token", "t", "SOL", "Token symbol or mint")
}

func runBalance(cmd *cobra.Command, args []string) error {
	engine, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	owner := wallet.Address(engine.Signer)
	if len(args) == 1 {
		owner = strings.TrimSpace(args[0])
	}
	if owner == "" {
		return fmt.Errorf("no owner given and WALLET_PRIVATE_KEY is not set")
	}
	if _, err := solana.PublicKeyFromBase58(owner); err != nil {
		return fmt.Errorf("invalid owner address: %w", err)
	}

	ctx := cmd.Context()
	tok, err := resolveToken(ctx, engine.Tokens, balanceToken)
	if err != nil {
		return err
	}

	var bal decimal.Decimal
	_ = withSpinner(cmd, "Reading balance...", func() error {
		bal = engine.Balances.GetBalance(ctx, tok.Mint, owner)
		return nil
	})

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"owner":   owner,
			"mint":    tok.Mint,
			"symbol":  tok.Symbol,
			"balance": bal,
		})
	}
	fmt.Printf("\n  %s  %s %s\n\n", owner, color.GreenString(bal.String()), color.YellowString(tok.Symbol))
	return nil
}
