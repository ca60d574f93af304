package cli

import (
	"context"
	"fmt"

	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a new product",
	Long: `Create a new product in the remote inventory.

Examples:
  pawstock add "Collar Ajustable" --supplier 2 --price 12.50 --stock 20
  pawstock add "Arena Premium" --supplier 3 --price 22.30 --stock 40 --min-stock 12`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addSupplier int64
	addPrice    float64
	addStock    int
	addMinStock int
	addImage    string
	addDesc     string
)

func init() {
	addCmd.Flags().Int64Var(&addSupplier, "supplier", 0, "Supplier id (required)")
	addCmd.Flags().Float64Var(&addPrice, "price", 0, "Unit price (required)")
	addCmd.Flags().IntVar(&addStock, "stock", 0, "Initial stock")
	addCmd.Flags().IntVar(&addMinStock, "min-stock", 0, "Low-stock threshold")
	addCmd.Flags().StringVar(&addImage, "image", "", "Image URI")
	addCmd.Flags().StringVar(&addDesc, "description", "", "Free-text characteristics")
}

func runAdd(cmd *cobra.Command, args []string) error {
	_, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	name := args[0]
	for _, arg := range args[1:] {
		name += " " + arg
	}

	p, err := repo.Create(context.Background(), inventory.Draft{
		Name:            name,
		SupplierID:      addSupplier,
		Price:           addPrice,
		Stock:           addStock,
		MinStock:        addMinStock,
		Image:           addImage,
		Characteristics: addDesc,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Created %q (id %s, %d units)\n", p.Name, p.ID, p.Stock)
	return nil
}
