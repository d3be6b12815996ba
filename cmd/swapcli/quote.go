package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fartswap/fartswap-core/internal/quote"
	"github.com/fartswap/fartswap-core/internal/swapengine"
)

var quoteSlippage string

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <from> [to] <to>",
	Short: "Price a swap through its direct Raydium pool",
	Long: `Price a swap without sending anything. Tokens are symbols or mint
addresses; the amount is in whole units of the source token.

Examples:
  swapcli quote 1 SOL to FARTSWAP
  swapcli quote 250 USDC SOL --slippage 0.5`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().StringVar(&quoteSlippage, "slippage", "", "Slippage tolerance in percent (default DEFAULT_SLIPPAGE)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	engine, cfg, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	req, err := buildQuoteRequest(cmd, engine, args, quoteSlippage, cfg.DefaultSlippage)
	if err != nil {
		return err
	}

	var res *quote.Result
	err = withSpinner(cmd, "Fetching quote...", func() error {
		var qerr error
		res, qerr = engine.Quotes.QuotePair(cmd.Context(), req)
		return qerr
	})
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), res)
	}
	displayQuote(req, res)
	return nil
}

func buildQuoteRequest(cmd *cobra.Command, engine *swapengine.Engine, args []string, slippageFlag, defaultSlippage string) (quote.Request, error) {
	amountArg, fromArg, toArg, err := pairArgs(args)
	if err != nil {
		return quote.Request{}, err
	}
	amount, err := decimal.NewFromString(amountArg)
	if err != nil || !amount.IsPositive() {
		return quote.Request{}, fmt.Errorf("amount must be a positive number, got %q", amountArg)
	}
	slip := strings.TrimSpace(slippageFlag)
	if slip == "" {
		slip = defaultSlippage
	}
	slippage, err := decimal.NewFromString(slip)
	if err != nil || slippage.IsNegative() {
		return quote.Request{}, fmt.Errorf("slippage must be a non-negative percent, got %q", slip)
	}

	ctx := cmd.Context()
	from, err := resolveToken(ctx, engine.Tokens, fromArg)
	if err != nil {
		return quote.Request{}, err
	}
	to, err := resolveToken(ctx, engine.Tokens, toArg)
	if err != nil {
		return quote.Request{}, err
	}
	return quote.Request{From: from, To: to, Amount: amount, SlippagePct: slippage}, nil
}

func displayQuote(req quote.Request, res *quote.Result) {
	heading("SWAP QUOTE")
	fmt.Printf("\n  From:             %s %s\n", res.AmountIn.String(), color.YellowString(req.From.Symbol))
	fmt.Printf("  To (estimated):   %s %s\n", color.GreenString(res.AmountOut.String()), color.YellowString(req.To.Symbol))
	fmt.Printf("  Minimum received: %s %s\n", res.MinAmountOut.String(), req.To.Symbol)
	fmt.Printf("  Price:            %s\n", res.ExecutionPrice)
	impact := res.PriceImpactDisplay()
	if res.PriceImpact.GreaterThan(decimal.NewFromInt(5)) {
		impact = color.RedString(impact)
	}
	fmt.Printf("  Price impact:     %s\n", impact)
	fmt.Printf("  LP fee:           %s %s\n", res.Fee.String(), req.From.Symbol)
	fmt.Printf("  Slippage:         %s%%\n", req.SlippagePct.String())
	fmt.Printf("  Pool:             %s\n", color.CyanString(res.PoolID))
	fmt.Println("\n" + rule(60) + "\n")
}
