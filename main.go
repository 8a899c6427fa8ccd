package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"swapdesk/cmd"
)

func main() {
	// A .env file is optional; plain environment variables work too.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
