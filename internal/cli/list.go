package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List products",
	Long: `List inventory products.

Examples:
  pawstock list
  pawstock list --low
  pawstock list --deleted`,
	RunE: runList,
}

var (
	listLow     bool
	listDeleted bool
)

func init() {
	listCmd.Flags().BoolVar(&listLow, "low", false, "Only low-stock products (server-filtered)")
	listCmd.Flags().BoolVar(&listDeleted, "deleted", false, "Show soft-deleted products")
}

func runList(cmd *cobra.Command, args []string) error {
	_, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	ctx := context.Background()
	var products []inventory.Product
	var title string

	switch {
	case listDeleted:
		products, err = repo.Deleted(ctx)
		title = "Deleted products"
	case listLow:
		products, err = repo.ListLowStock(ctx)
		title = "Low-stock products"
	default:
		products, err = repo.List(ctx)
		title = "Products"
	}
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	fmt.Printf("\n📦 %s (%d)\n", title, len(products))
	fmt.Println(strings.Repeat("─", 72))
	for _, p := range products {
		printProduct(p)
	}
	fmt.Println()
	return nil
}

func printProduct(p inventory.Product) {
	status := "   "
	switch {
	case p.OutOfStock():
		status = "⛔ "
	case p.LowStock:
		status = "⚠️ "
	}

	name := p.Name
	if len(name) > 34 {
		name = name[:31] + "..."
	}

	fmt.Printf("  %s%-5s %-34s  %4d units (min %d)  $%.2f\n",
		status, p.ID, name, p.Stock, p.MinStock, p.Price)
}
