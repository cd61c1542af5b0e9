package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/duoplan/cmd/duoplanctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "duoplanctl",
		Short:        "Operator tools for the duoplan goal engine",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.MaintainCmd())
	rootCmd.AddCommand(cmd.WeekCmd())
	rootCmd.AddCommand(cmd.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
