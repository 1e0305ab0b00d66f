package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thannaske/s3inventory/pkg/db"
)

var (
	// Flag to confirm pruning without prompting
	confirm bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune old bucket size samples",
	Long: `Remove stored bucket size samples from months that have already
been aggregated into monthly averages. This keeps the database small
while preserving the monthly average statistics.

Only samples from completed months with calculated monthly averages are removed.
Samples from the current month and any months without averages are preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.NewDB(config.DBPath)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := database.InitDB(); err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}

		out := cmd.OutOrStdout()
		if !confirm {
			fmt.Fprint(out, "This will permanently delete size samples from months that have "+
				"completed and have calculated monthly averages.\n"+
				"The monthly average statistics will be preserved.\n"+
				"Are you sure you want to continue? (y/N): ")

			response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			response = strings.TrimSpace(response)
			if response != "y" && response != "Y" {
				fmt.Fprintln(out, "Pruning cancelled.")
				return nil
			}
		}

		fmt.Fprintln(out, "Pruning old size samples...")
		rowsDeleted, err := database.PruneOldData()
		if err != nil {
			return fmt.Errorf("prune old data: %w", err)
		}

		if rowsDeleted == 0 {
			fmt.Fprintln(out, "No data to prune. All samples are still needed or no monthly averages have been calculated yet.")
		} else {
			fmt.Fprintf(out, "Successfully pruned %d samples from completed months.\n", rowsDeleted)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm pruning without prompting")
}
