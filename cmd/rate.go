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

var (
	rateFixed   bool
	rateReverse bool
)

var rateCmd = &cobra.Command{
	Use:   "rate <amount> <sell-currency> to <buy-currency>",
	Short: "Preview the estimated exchange rate for a pair",
	Long: `Fetch the estimated amount you would receive for a swap, along
with the minimum and maximum transactable amount for the pair.

With --reverse, the amount denominates the buy side instead: the
estimate tells you how much of the sell currency that costs.

Examples:
  swapdesk rate 0.5 BTC to ETH
  swapdesk rate 100 USDT to SOL --fixed
  swapdesk rate 1 BTC to ETH --reverse`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)

	rateCmd.Flags().BoolVar(&rateFixed, "fixed", false, "Quote a fixed rate instead of floating")
	rateCmd.Flags().BoolVar(&rateReverse, "reverse", false, "Amount denominates the buy currency")
}

func runRate(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	req, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	req.Fixed = rateFixed

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	provider := client.New(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching estimate..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout)
	defer cancel()

	// With --reverse the quote runs buy->sell: the entered amount is
	// what the user wants to receive.
	from, to := req.SellCurrency, req.BuyCurrency
	if rateReverse {
		from, to = to, from
	}

	estimate, estErr := provider.GetEstimated(ctx, client.EstimateQuery{
		From:   from,
		To:     to,
		Amount: req.Amount,
		Fixed:  req.Fixed,
	})

	// Bounds are informational here; a failed range fetch does not
	// block the estimate display. They are denominated in the query's
	// from currency.
	constraint, rangeErr := provider.GetRanges(ctx, from, to, req.Fixed)

	if !jsonOutput {
		s.Stop()
	}

	if estErr != nil {
		printError(estErr)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"amount":           req.Amount,
			"sell_currency":    req.SellCurrency,
			"buy_currency":     req.BuyCurrency,
			"estimated_amount": estimate.String(),
			"fixed":            req.Fixed,
			"reverse":          rateReverse,
		}
		if rangeErr == nil {
			output["min_amount"] = constraint.Min.String()
			if constraint.Max != nil {
				output["max_amount"] = constraint.Max.String()
			}
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	rate := "floating"
	if req.Fixed {
		rate = "fixed"
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    ESTIMATED RATE")
	fmt.Println(strings.Repeat("=", 60))

	if rateReverse {
		fmt.Printf("\n  You receive:  %s %s\n", req.Amount, color.YellowString(req.BuyCurrency))
		fmt.Printf("  You send:     ~%s %s\n", estimate.String(), color.YellowString(req.SellCurrency))
	} else {
		fmt.Printf("\n  You send:     %s %s\n", req.Amount, color.YellowString(req.SellCurrency))
		fmt.Printf("  You receive:  ~%s %s\n", estimate.String(), color.YellowString(req.BuyCurrency))
	}
	fmt.Printf("  Rate mode:    %s\n", rate)

	if rangeErr == nil {
		fmt.Printf("  Minimum:      %s %s\n", constraint.Min.String(), from)
		if constraint.Max != nil {
			fmt.Printf("  Maximum:      %s %s\n", constraint.Max.String(), from)
		}
	} else {
		color.HiBlack("  (min/max bounds unavailable)")
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
