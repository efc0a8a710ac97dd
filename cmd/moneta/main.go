package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "moneta",
		Short:        "Personal-finance teaching simulation",
		SilenceUsage: true,
	}

	root.AddCommand(
		newSimulateCmd(),
		newBanksCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
