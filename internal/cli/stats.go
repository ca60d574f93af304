package cli

import (
	"context"
	"fmt"

	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show inventory totals",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	_, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	ctx := context.Background()
	products, err := repo.List(ctx)
	if err != nil {
		return err
	}
	deleted, err := repo.Deleted(ctx)
	if err != nil {
		return err
	}

	stats := inventory.ComputeStats(append(products, deleted...))

	fmt.Println("\n📊 Inventory")
	fmt.Printf("  Products:      %d\n", stats.TotalProducts)
	fmt.Printf("  Total value:   $%.2f\n", stats.TotalValue)
	fmt.Printf("  Available:     %d\n", stats.Available)
	fmt.Printf("  Low stock:     %d\n", stats.LowStockCount)
	fmt.Printf("  Out of stock:  %d\n", stats.OutOfStock)
	fmt.Printf("  Deleted:       %d\n", stats.DeletedCount)
	fmt.Println()
	return nil
}
