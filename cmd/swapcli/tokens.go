package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fartswap/fartswap-core/internal/tokens"
)

var (
	tokenSearch string
	tokenLimit  int
)

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "List tokens from the catalog",
	Long: `List the token catalog: pinned tokens first, then the upstream list.

Examples:
  swapcli tokens
  swapcli tokens --search usdc
  swapcli tokens --limit 100 --json`,
	Args: cobra.NoArgs,
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringVarP(&tokenSearch, "search", "s", "", "Filter by symbol, name or mint")
	tokensCmd.Flags().IntVarP(&tokenLimit, "limit", "n", 25, "Maximum tokens to show (0 = all)")
}

func runTokens(cmd *cobra.Command, args []string) error {
	engine, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	var res tokens.LoadResult
	_ = withSpinner(cmd, "Fetching token list...", func() error {
		res = engine.Tokens.Load(cmd.Context())
		return nil
	})
	items := res.Catalog.Search(tokenSearch, tokenLimit)

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), items)
	}
	if res.Warning != "" {
		color.Yellow("\n%s", res.Warning)
	}
	if len(items) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return nil
	}

	heading(fmt.Sprintf("TOKENS (%d of %d)", len(items), res.Catalog.Len()))
	for _, d := range items {
		marker := " "
		if res.Catalog.IsPinned(d.Mint) {
			marker = color.YellowString("*")
		}
		fmt.Printf(" %s %-10s %-28.28s %s\n", marker, color.CyanString(d.Symbol), d.Name, d.Mint)
	}
	fmt.Println()
	return nil
}
