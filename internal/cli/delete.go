package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [product-id]",
	Aliases: []string{"rm"},
	Short:   "Soft-delete a product",
	Long: `Soft-delete a product. The record moves to the deleted listing and can
be brought back with 'pawstock restore'.

Examples:
  pawstock delete 4
  pawstock rm 4`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [product-id]",
	Short: "Restore a soft-deleted product",
	Long: `Restore a soft-deleted product in the local snapshot.

The backend has no restore endpoint, so this only flips the local copy; the
next full listing from the server decides the final state.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	id := args[0]
	if cfg.ConfirmDelete {
		fmt.Printf("About to soft-delete product %s\n", id)
		fmt.Print("Are you sure? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := repo.SoftDelete(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("🗑️  Deleted product %s (recoverable with 'pawstock restore %s')\n", id, id)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	_, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	p, err := repo.Restore(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Restored %q (%d units)\n", p.Name, p.Stock)
	return nil
}
