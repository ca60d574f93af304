package cli

import (
	"context"
	"fmt"

	"github.com/pawhome/pawstock/internal/notify"
	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show low-stock alerts",
	Long: `Show the current low-stock and out-of-stock alerts.

By default the alerts are derived locally from the product listing; with
--remote the server-computed notification list is used instead.`,
	RunE: runAlerts,
}

var alertsRemote bool

func init() {
	alertsCmd.Flags().BoolVar(&alertsRemote, "remote", false, "Use the server-computed notification list")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	cfg, store, repo, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSession(store); err != nil {
		return err
	}

	source := notify.LocalSource(repo)
	if alertsRemote {
		source = notify.RemoteSource(cfg.APIURL, store)
	}

	alerts, err := source(context.Background())
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		fmt.Println("✅ All products have sufficient stock.")
		return nil
	}

	fmt.Printf("\n🔔 %d alert(s)\n", len(alerts))
	for _, a := range alerts {
		icon := "⚠️ "
		if a.Severity == notify.SeverityOutOfStock {
			icon = "⛔ "
		}
		fmt.Printf("  %s%s\n", icon, a.Message)
	}
	fmt.Println()
	return nil
}
