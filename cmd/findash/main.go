package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "findash",
	Short: "Financial and recruiting dashboards from spreadsheet uploads",
	Long: `findash turns P&L, balance sheet, recruiting and margin spreadsheets
into dashboard KPIs and chart data. Without a subcommand it starts the web server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	addServeFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, processCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
