package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/swap"
)

var (
	swapSlippage string
	noConfirm    bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <from> [to] <to>",
	Short: "Execute a swap with the configured wallet",
	Long: `Quote, sign and submit a swap using the wallet from WALLET_PRIVATE_KEY,
then wait for confirmation.

If confirmation times out the transaction may still land: check the printed
signature before retrying.

Examples:
  swapcli swap 0.1 SOL to FARTSWAP
  swapcli swap 20 USDC SOL --slippage 0.5 --yes`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)
	swapCmd.Flags().StringVar(&swapSlippage, "slippage", "", "Slippage tolerance in percent (default DEFAULT_SLIPPAGE)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) error {
	engine, cfg, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	if engine.Signer == nil {
		return fmt.Errorf("%w: set WALLET_PRIVATE_KEY", swap.ErrWalletNotConnected)
	}
	if engine.Flags != nil {
		enabled, ferr := engine.Flags.Enabled(cmd.Context(), constants.FlagSwapsEnabled, true)
		if ferr == nil && !enabled {
			return fmt.Errorf("swaps are currently disabled")
		}
	}

	qreq, err := buildQuoteRequest(cmd, engine, args, swapSlippage, cfg.DefaultSlippage)
	if err != nil {
		return err
	}

	var preview *quote.Result
	err = withSpinner(cmd, "Fetching quote...", func() error {
		var qerr error
		preview, qerr = engine.Quotes.QuotePair(cmd.Context(), qreq)
		return qerr
	})
	if err != nil {
		return err
	}

	if !jsonOutput(cmd) {
		displayQuote(qreq, preview)
		if !noConfirm && !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			return nil
		}
	}

	req := swap.Request{
		From:        &qreq.From,
		To:          &qreq.To,
		Amount:      qreq.Amount.String(),
		SlippagePct: qreq.SlippagePct.String(),
	}

	var receipt *swap.Receipt
	err = withSpinner(cmd, "Sending transaction...", func() error {
		var xerr error
		receipt, xerr = engine.Executor.Execute(cmd.Context(), req, engine.Signer)
		return xerr
	})

	if jsonOutput(cmd) {
		out := map[string]any{"receipt": receipt}
		if err != nil {
			out["error"] = err.Error()
			out["kind"] = swap.Kind(err)
		}
		if perr := printJSON(cmd.OutOrStdout(), out); perr != nil {
			return perr
		}
		return err
	}

	switch {
	case err == nil:
		color.Green("\nSwap successful!")
		fmt.Printf("  Signature: %s\n", color.CyanString(receipt.Signature))
		fmt.Printf("  Took:      %s\n\n", receipt.Duration.Round(time.Millisecond))
		return nil
	case errors.Is(err, swap.ErrConfirmationTimeout) && receipt != nil:
		color.Yellow("\nTransaction sent but not confirmed in time.")
		fmt.Printf("  Signature: %s\n", color.CyanString(receipt.Signature))
		fmt.Println("  Check the signature on an explorer before retrying.")
		fmt.Println()
		return err
	default:
		if receipt != nil {
			fmt.Printf("\n  Signature: %s\n", color.CyanString(receipt.Signature))
		}
		return err
	}
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
