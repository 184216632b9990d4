package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect executed requests",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent executions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.HistoryList(flagEnv, flagLimit, flagOutput)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded request and its response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid history id: %s", args[0])
		}
		return app.HistoryShow(id, flagOutput)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded executions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.HistoryClear(flagYes)
	},
}

var flagLimit int

func init() {
	historyListCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	historyListCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
	historyShowCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml/body)")
	historyClearCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}
