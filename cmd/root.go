package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"swapdesk/config"
)

var rootCmd = &cobra.Command{
	Use:   "swapdesk",
	Short: "A CLI for swapping cryptocurrencies through an instant swap provider",
	Long: `swapdesk is a command-line front-end for instant cryptocurrency swaps.
Pick a sell and a buy currency, preview the estimated rate, create the
exchange, and watch it until it completes.

Examples:
  swapdesk currencies --search bit
  swapdesk pairs BTC
  swapdesk rate 0.5 BTC to ETH
  swapdesk swap 0.5 BTC to ETH --address 0x1234...abcd
  swapdesk status <exchange-id> --watch`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func configureLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}

	level, err := logrus.ParseLevel(config.Get().LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
