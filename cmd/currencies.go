package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapdesk/config"
	"swapdesk/pkg/catalog"
	"swapdesk/pkg/client"
	"swapdesk/pkg/market"
)

var (
	searchText  string
	onlyPopular bool
)

var currenciesCmd = &cobra.Command{
	Use:     "currencies",
	Aliases: []string{"list-currencies", "ls"},
	Short:   "List the supported currencies",
	Long: `List the currencies supported by the swap provider, cross-filtered
against the market-cap ranking and grouped into Popular and Other.

Examples:
  swapdesk currencies
  swapdesk currencies --search bit
  swapdesk currencies --popular`,
	Run: runCurrencies,
}

func init() {
	rootCmd.AddCommand(currenciesCmd)

	currenciesCmd.Flags().StringVar(&searchText, "search", "", "Filter by name or symbol")
	currenciesCmd.Flags().BoolVar(&onlyPopular, "popular", false, "Show only the popular group")
}

func runCurrencies(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		return
	}

	provider := client.New(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)
	ranks := market.New(cfg.MarketURL, cfg.HTTPTimeout)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Loading currency catalog..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout)
	defer cancel()

	cat, err := catalog.Load(ctx, provider, ranks, cfg.MarketTop)
	if !jsonOutput {
		s.Stop()
	}

	// Catalog failure is soft: show the error, keep the command usable
	if err != nil {
		color.Red("\nFailed to load cryptocurrencies. Please try again later.")
		color.HiBlack("(%v)\n", err)
		return
	}

	groups := cat.Options(searchText)
	if onlyPopular {
		filtered := groups[:0]
		for _, group := range groups {
			if group.Label == "Popular" {
				filtered = append(filtered, group)
			}
		}
		groups = filtered
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(groups, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(groups) == 0 {
		fmt.Println("\nNo currencies found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     SUPPORTED CURRENCIES")
	fmt.Println(strings.Repeat("=", 70))

	total := 0
	for _, group := range groups {
		color.Cyan("\n%s", strings.ToUpper(group.Label))
		fmt.Println(strings.Repeat("-", 70))

		for _, option := range group.Options {
			marker := " "
			if option.IsPopular {
				marker = "*"
			}
			fmt.Printf("  %s %-10s  %-34s %s\n",
				marker,
				color.YellowString(option.Value),
				option.Label,
				color.HiBlackString(option.Icon))
			total++
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("\nTotal: %d currencies\n\n", total)
}
