package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thannaske/s3inventory/pkg/inventory"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Show the storage classes queried per bucket",
	Long: `Print the CloudWatch StorageType dimensions summed for every bucket.
The list can be replaced with storage_classes in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		probes, err := inventory.NewProbeSet(config.StorageClasses.Version, config.StorageClasses.Classes)
		if err != nil {
			return fmt.Errorf("invalid storage class list: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Storage classes (version %s, %d entries):\n", probes.Version(), probes.Len())
		for _, c := range probes.Classes() {
			fmt.Fprintf(out, "  %s\n", c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
