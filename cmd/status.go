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
	"swapdesk/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <exchange-id>",
	Short: "Check the status of an exchange",
	Long: `Check the status and detail of an exchange by its id.

With --watch, the status is polled until a terminal status (finished,
failed, refunded, expired) is reached.

Examples:
  swapdesk status a1b2c3d4
  swapdesk status a1b2c3d4 --watch
  swapdesk status a1b2c3d4 --watch --interval 15`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until a terminal status")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 10, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	exchangeID := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	provider := client.New(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)

	if watchStatus {
		watchExchangeStatus(provider, exchangeID, jsonOutput, cfg.HTTPTimeout)
	} else {
		checkExchangeStatus(provider, exchangeID, jsonOutput, cfg.HTTPTimeout)
	}
}

func checkExchangeStatus(provider *client.Client, exchangeID string, jsonOutput bool, timeout time.Duration) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking exchange status..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	exchange, err := provider.GetExchange(ctx, exchangeID)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(exchange, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayExchange(exchange)
	}
}

// watchExchangeStatus polls on a fixed cadence. Transient failures are
// reported and polling continues; only a terminal status stops it.
func watchExchangeStatus(provider *client.Client, exchangeID string, jsonOutput bool, timeout time.Duration) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching exchange %s\n", color.CyanString(exchangeID))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	if checkAndDisplayExchange(provider, exchangeID, timeout) {
		return
	}

	for range ticker.C {
		if checkAndDisplayExchange(provider, exchangeID, timeout) {
			return
		}
	}
}

func checkAndDisplayExchange(provider *client.Client, exchangeID string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	exchange, err := provider.GetExchange(ctx, exchangeID)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayExchange(exchange)

	if types.IsTerminalStatus(exchange.Status) {
		fmt.Printf("Exchange reached terminal status: %s\n\n", coloredStatus(exchange.Status))
		return true
	}
	return false
}

func displayExchange(exchange *types.Exchange) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                       EXCHANGE STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Exchange ID:     %s\n", color.CyanString(exchange.ID))
	fmt.Printf("  Status:          %s\n", coloredStatus(exchange.Status))
	fmt.Printf("  Pair:            %s -> %s\n",
		strings.ToUpper(exchange.CurrencyFrom), strings.ToUpper(exchange.CurrencyTo))

	if exchange.AmountFrom != "" {
		fmt.Printf("  Amount In:       %s\n", exchange.AmountFrom)
	}
	if exchange.AmountTo != "" {
		fmt.Printf("  Amount Out:      %s\n", exchange.AmountTo)
	}
	if exchange.Rate != "" {
		fmt.Printf("  Rate:            %s\n", exchange.Rate)
	}
	if exchange.DepositAddress != "" {
		fmt.Printf("  Deposit Address: %s\n", color.HiBlackString(exchange.DepositAddress))
	}
	if exchange.ExtraIDFrom != "" {
		fmt.Printf("  Deposit Memo:    %s\n", color.MagentaString(exchange.ExtraIDFrom))
	}
	if exchange.UpdatedAt != "" {
		fmt.Printf("  Last Updated:    %s\n", exchange.UpdatedAt)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredStatus(status string) string {
	switch strings.ToLower(status) {
	case types.StatusFinished:
		return color.GreenString(strings.ToUpper(status))
	case types.StatusWaiting, types.StatusConfirming, types.StatusExchanging, types.StatusSending:
		return color.YellowString(strings.ToUpper(status))
	case types.StatusFailed, types.StatusRefunded, types.StatusExpired:
		return color.RedString(strings.ToUpper(status))
	default:
		return strings.ToUpper(status)
	}
}
