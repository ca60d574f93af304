package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/pawhome/pawstock/internal/stock"
	"github.com/spf13/cobra"
)

var stockCmd = &cobra.Command{
	Use:   "stock [product-id] [delta]",
	Short: "Adjust a product's stock by a delta",
	Long: `Adjust a product's stock by a signed delta. The server applies the delta
and returns the final count, clamped at zero.

Examples:
  pawstock stock 4 +10
  pawstock stock 4 -5`,
	Args: cobra.ExactArgs(2),
	RunE: runStock,
}

var thresholdCmd = &cobra.Command{
	Use:   "threshold [product-id] [value]",
	Short: "Set a product's low-stock threshold",
	Args:  cobra.ExactArgs(2),
	RunE:  runThreshold,
}

func runStock(cmd *cobra.Command, args []string) error {
	_, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid delta %q: %w", args[1], err)
	}
	if delta == 0 {
		fmt.Println("Nothing to do.")
		return nil
	}

	ctx := context.Background()
	id := args[0]

	// Fetch the current count so the adjuster can clamp the proposal.
	current, err := currentProduct(ctx, repo, id)
	if err != nil {
		return err
	}

	adjuster := stock.NewAdjuster(repo)
	updated, err := adjuster.Adjust(ctx, current, delta)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %s: %d → %d units\n", updated.Name, current.Stock, updated.Stock)
	if updated.LowStock {
		fmt.Printf("⚠️  Low stock: %d units left (min %d)\n", updated.Stock, updated.MinStock)
	}
	return nil
}

func runThreshold(cmd *cobra.Command, args []string) error {
	_, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid threshold %q: %w", args[1], err)
	}

	p, err := repo.UpdateMinThreshold(context.Background(), args[0], value)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %s: low-stock threshold set to %d\n", p.Name, p.MinStock)
	return nil
}

func currentProduct(ctx context.Context, repo *inventory.Repository, id string) (inventory.Product, error) {
	products, err := repo.List(ctx)
	if err != nil {
		return inventory.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return inventory.Product{}, fmt.Errorf("product %s: %w", id, inventory.ErrNotFound)
}
