package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapdesk/config"
	"swapdesk/pkg/client"
	"swapdesk/pkg/parser"
	"swapdesk/pkg/swap"
	"swapdesk/pkg/types"
)

var (
	swapAddress    string
	swapMemo       string
	swapRefundAddr string
	swapFixed      bool
	noConfirm      bool
	noWatch        bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <sell-currency> to <buy-currency>",
	Short: "Create a cryptocurrency exchange",
	Long: `Create an exchange with the swap provider and watch it until it
reaches a terminal status.

IMPORTANT:
  - You MUST specify --address (where you'll receive the bought currency)
  - Some currencies (XRP, XLM, ATOM, ...) also require --memo

Examples:
  swapdesk swap 0.5 BTC to ETH --address 0x1234...abcd
  swapdesk swap 100 USDT to XRP --address rN7n7...abc --memo 12345
  swapdesk swap 1 ETH to BTC --address bc1q... --fixed --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapAddress, "address", "", "Recipient address (REQUIRED)")
	swapCmd.Flags().StringVar(&swapMemo, "memo", "", "Memo/tag for ledgers that require one")
	swapCmd.Flags().StringVar(&swapRefundAddr, "refund-to", "", "Refund address on the sell chain (defaults to the recipient address)")
	swapCmd.Flags().BoolVar(&swapFixed, "fixed", false, "Lock the rate at quote time instead of floating")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not watch the exchange after creating it")
}

func runSwap(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	req, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	provider := client.New(cfg.BaseURL, cfg.APIKey, cfg.HTTPTimeout)
	if !provider.HasAPIKey() {
		// Configuration failure blocks creation up front, before any
		// provider call is made.
		printError(client.ErrMissingAPIKey)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := swap.NewSession(ctx, swap.Options{
		Provider:     provider,
		Debounce:     cfg.Debounce,
		PollInterval: cfg.PollInterval,
	})
	defer session.Close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Preparing swap..."
		s.Start()
	}

	// Selecting the sell currency kicks off the pair fetch; Settle
	// waits for it so the pair check below sees fresh data.
	session.SetFixedRate(swapFixed)
	session.SetSellCurrency(req.SellCurrency)
	session.Settle()

	snap := session.Snapshot()
	if snap.Err != "" {
		if !jsonOutput {
			s.Stop()
		}
		printError(errors.New(snap.Err))
		os.Exit(1)
	}
	if !pairAvailable(snap.AvailablePairs, req.BuyCurrency) {
		if !jsonOutput {
			s.Stop()
		}
		printError(fmt.Errorf("%s cannot be exchanged into %s", req.SellCurrency, req.BuyCurrency))
		os.Exit(1)
	}

	session.SetBuyCurrency(req.BuyCurrency)
	session.SetSellAmount(req.Amount)
	session.SetRecipientAddress(swapAddress)
	session.SetRefundAddress(swapRefundAddr)
	session.SetMemo(swapMemo)
	session.Settle()

	if !jsonOutput {
		s.Stop()
	}

	snap = session.Snapshot()
	if !jsonOutput {
		displayPreview(snap, req)

		if !noConfirm && !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}

		s.Suffix = " Creating exchange..."
		s.Start()
	}

	exchange, err := session.Submit()
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		var validationErr *swap.ValidationError
		if errors.As(err, &validationErr) {
			displayFieldErrors(validationErr.Fields)
		} else {
			printError(errors.New(session.Snapshot().Err))
		}
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"id":              exchange.ID,
			"status":          exchange.Status,
			"deposit_address": exchange.DepositAddress,
			"deposit_memo":    exchange.ExtraIDFrom,
			"amount_from":     exchange.AmountFrom,
			"amount_to":       exchange.AmountTo,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayDepositInstructions(exchange, req)

	if noWatch {
		fmt.Println("You can watch the exchange with:")
		color.Cyan("  swapdesk status %s --watch\n", exchange.ID)
		return
	}

	watchSession(ctx, session)
}

func pairAvailable(pairs []string, symbol string) bool {
	for _, pair := range pairs {
		if strings.EqualFold(pair, symbol) {
			return true
		}
	}
	return false
}

func displayPreview(snap swap.State, req *types.SwapRequest) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP PREVIEW")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  You send:     %s %s\n", req.Amount, color.YellowString(req.SellCurrency))
	if snap.BuyAmount != "" {
		fmt.Printf("  You receive:  ~%s %s\n", snap.BuyAmount, color.YellowString(req.BuyCurrency))
	} else {
		fmt.Printf("  You receive:  %s\n", color.HiBlackString("(estimate unavailable)"))
	}

	if snap.Constraint != nil {
		fmt.Printf("  Minimum:      %s %s\n", snap.Constraint.Min.String(), req.SellCurrency)
		if snap.Constraint.Max != nil {
			fmt.Printf("  Maximum:      %s %s\n", snap.Constraint.Max.String(), req.SellCurrency)
		}
	}

	if snap.AddressStatus.IsValid {
		fmt.Printf("  Recipient:    %s %s\n", snap.RecipientAddress, color.GreenString("(valid)"))
	} else {
		fmt.Printf("  Recipient:    %s %s\n", snap.RecipientAddress, color.RedString("(check format)"))
	}

	if snap.Err != "" {
		color.Yellow("\n  Warning: %s", snap.Err)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func displayFieldErrors(fields map[string]string) {
	color.Red("\nThe swap could not be submitted:")

	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)

	for _, field := range names {
		fmt.Printf("  %-18s %s\n", field+":", fields[field])
	}
	fmt.Println()
}

func displayDepositInstructions(exchange *types.Exchange, req *types.SwapRequest) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Yellow("                 DEPOSIT INSTRUCTIONS")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Exchange ID:  %s\n", color.CyanString(exchange.ID))
	fmt.Printf("  Status:       %s\n", coloredStatus(exchange.Status))
	fmt.Printf("\nTo complete the swap, send %s %s to:\n\n", req.Amount, req.SellCurrency)
	color.Cyan("  %s\n", exchange.DepositAddress)

	if exchange.ExtraIDFrom != "" {
		fmt.Printf("\nMemo (REQUIRED): %s\n", color.MagentaString(exchange.ExtraIDFrom))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

// watchSession renders status changes until the exchange reaches a
// terminal status or the user interrupts.
func watchSession(ctx context.Context, session *swap.Session) {
	fmt.Println("Watching the exchange. Press Ctrl+C to stop (the swap continues either way).")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastStatus := ""
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped watching.")
			return
		case <-ticker.C:
		}

		snap := session.Snapshot()
		if snap.Exchange != nil && snap.Exchange.Status != lastStatus {
			lastStatus = snap.Exchange.Status
			fmt.Printf("  %s  status: %s\n",
				time.Now().Format("15:04:05"), coloredStatus(lastStatus))
		}

		if snap.Phase == swap.PhaseTerminal {
			if lastStatus == types.StatusFinished {
				printSuccess("Swap finished.")
			} else {
				printError(fmt.Errorf("swap ended with status %q", lastStatus))
			}
			return
		}
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
