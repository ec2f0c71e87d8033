package main

import (
	"context"
	"fmt"

	"proshop/internal/seeder"

	"github.com/spf13/cobra"
)

// proshop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load or remove sample data",
}

// proshop seed import
var seedImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace all data with sample users and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := boot(ctx)
		if err != nil {
			return err
		}
		defer rt.store.Close(context.Background())
		defer rt.log.Sync()

		res, err := seeder.Import(ctx, rt.store, rt.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Data imported: %d users, %d products\n", res.Users, res.Products)
		return nil
	},
}

// proshop seed destroy
var seedDestroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete all orders, products and users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := boot(ctx)
		if err != nil {
			return err
		}
		defer rt.store.Close(context.Background())
		defer rt.log.Sync()

		if err := seeder.Destroy(ctx, rt.store, rt.log); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Data destroyed")
		return nil
	},
}

func init() {
	seedCmd.AddCommand(seedImportCmd)
	seedCmd.AddCommand(seedDestroyCmd)
}
