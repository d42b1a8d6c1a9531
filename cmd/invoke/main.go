package main

import (
	"fmt"
	"os"

	"github.com/benvon/board-insights/cmd/invoke/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "board-insights-invoke",
		Short: "Local invocation tool for the board insights handlers",
		Long:  "CLI tool for replaying gateway events through the handlers and checking upstream services",
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging of completion prompts and responses")
	rootCmd.AddCommand(commands.NewInvokeCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
