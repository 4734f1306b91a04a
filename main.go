package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rocketscienceinc/tictactoe-tally/internal/cli"
)

// main - is the entry point of the application. It loads .env overrides and runs the CLI.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	// .env is optional
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
