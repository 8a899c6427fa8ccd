package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapdesk/config"
	"swapdesk/pkg/client"
	"swapdesk/pkg/parser"
)

var pairsFixed bool

var pairsCmd = &cobra.Command{
	Use:   "pairs <sell-currency>",
	Short: "List valid buy currencies for a sell currency",
	Long: `List the currencies the provider will exchange a given sell
currency into.

Examples:
  swapdesk pairs BTC
  swapdesk pairs ETH --fixed`,
	Args: cobra.ExactArgs(1),
	Run:  runPairs,
}

func init() {
	rootCmd.AddCommand(pairsCmd)

	pairsCmd.Flags().BoolVar(&pairsFixed, "fixed", false, "Use fixed-rate pairs")
}

func runPairs(cmd *cobra.Command, args []string) {
	symbol := parser.NormalizeSymbol(args[0])
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	provider := client.New(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = fmt.Sprintf(" Fetching pairs for %s...", symbol)
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()

	pairs, err := provider.GetPairs(ctx, symbol, pairsFixed)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		color.Red("\nNo available pairs for the selected currency.")
		color.HiBlack("(%v)\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(pairs, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(pairs) == 0 {
		fmt.Printf("\nNo pairs available for %s.\n", symbol)
		return
	}

	rate := "floating"
	if pairsFixed {
		rate = "fixed"
	}

	fmt.Printf("\n%s can be exchanged into %d currencies (%s rate):\n\n",
		color.YellowString(symbol), len(pairs), rate)

	for i, pair := range pairs {
		fmt.Printf("  %-8s", strings.ToUpper(pair))
		if (i+1)%6 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()
}
