package cli

import (
	"fmt"

	"github.com/pawhome/pawstock/internal/config"
	"github.com/pawhome/pawstock/internal/inventory"
	"github.com/pawhome/pawstock/internal/logger"
	"github.com/pawhome/pawstock/internal/session"
)

// buildDeps wires the session store and product repository from config.
// cleanup closes the snapshot database.
func buildDeps() (*config.Config, *session.Store, *inventory.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	store := session.NewStore(dir, cfg.APIURL, cfg.SessionDuration())

	cleanup := func() {}
	var snapshot *inventory.Snapshot
	if path, err := inventory.DefaultSnapshotPath(); err == nil {
		snapshot, err = inventory.OpenSnapshot(path)
		if err != nil {
			logger.Warn("Failed to open product snapshot", logger.F("error", err))
			snapshot = nil
		} else {
			cleanup = func() { snapshot.Close() }
		}
	}

	repo := inventory.NewRepository(cfg.APIURL, store, snapshot)
	return cfg, store, repo, cleanup, nil
}

// requireSession is the CLI equivalent of the dashboard's session guard: one
// check on entry, sliding the expiry window when the session is live.
func requireSession(store *session.Store) error {
	if !store.IsValid() {
		return fmt.Errorf("no active session: run 'pawstock login' first")
	}
	store.Refresh()
	return nil
}
