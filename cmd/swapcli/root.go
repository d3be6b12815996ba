package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fartswap/fartswap-core/internal/config"
	"github.com/fartswap/fartswap-core/internal/swapengine"
	"github.com/fartswap/fartswap-core/internal/tokens"
)

var rootCmd = &cobra.Command{
	Use:   "swapcli",
	Short: "Quote and execute Raydium swaps from the terminal",
	Long: `swapcli prices and executes single-pool swaps on Raydium AMM v4.
Only direct pools are used; there is no multi-hop routing.

Examples:
  swapcli tokens --search fart
  swapcli balance
  swapcli quote 1 SOL to FARTSWAP
  swapcli swap 0.5 SOL USDC --slippage 0.5`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// newEngine loads configuration and builds the swap stack. Logging goes to
// stderr and stays quiet unless --verbose is set.
func newEngine(cmd *cobra.Command) (*swapengine.Engine, *config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	logger.SetLevel(logrus.WarnLevel)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	e, err := swapengine.NewEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return e, cfg, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withSpinner runs fn behind a spinner unless JSON output was requested.
func withSpinner(cmd *cobra.Command, label string, fn func() error) error {
	if jsonOutput(cmd) {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + label
	s.Writer = os.Stderr
	s.Start()
	defer s.Stop()
	return fn()
}

// resolveToken accepts a mint address or a symbol. Symbols match the first
// catalog entry case-insensitively, so pinned tokens win.
func resolveToken(ctx context.Context, src tokens.Source, arg string) (tokens.Descriptor, error) {
	arg = strings.TrimSpace(arg)
	if _, err := solana.PublicKeyFromBase58(arg); err == nil {
		return src.Import(ctx, arg)
	}
	res := src.Load(ctx)
	if d, ok := findBySymbol(res.Catalog, arg); ok {
		return d, nil
	}
	return tokens.Descriptor{}, fmt.Errorf("%w: %s", tokens.ErrTokenNotFound, arg)
}

func findBySymbol(cat *tokens.Catalog, symbol string) (tokens.Descriptor, bool) {
	for _, d := range cat.Tokens() {
		if strings.EqualFold(d.Symbol, symbol) {
			return d, true
		}
	}
	return tokens.Descriptor{}, false
}

// pairArgs parses "<amount> <from> [to] <to>".
func pairArgs(args []string) (amount, from, to string, err error) {
	switch {
	case len(args) == 4 && strings.EqualFold(args[2], "to"):
		return args[0], args[1], args[3], nil
	case len(args) == 3:
		return args[0], args[1], args[2], nil
	default:
		return "", "", "", fmt.Errorf("expected <amount> <from> [to] <to>, got %q", strings.Join(args, " "))
	}
}

func rule(width int) string {
	return strings.Repeat("=", width)
}

func heading(title string) {
	fmt.Println("\n" + rule(60))
	color.Green("  %s", title)
	fmt.Println(rule(60))
}
