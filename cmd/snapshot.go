package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/iocache"
	"github.com/huangsam/basket/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotSetup loads minimal configuration needed for snapshot cache operations.
// This is used by commands that need cache access without full shared setup.
func snapshotSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := backendFromViper("cache-backend")
	connStr := viper.GetString("cache-db-connect")

	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr, "cache-db-connect"); err != nil {
		return err
	}

	// No run tracking for snapshot commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize snapshot cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// snapshotCmd focused on master snapshot cache management.
//
// Note: Snapshot subcommands use minimal initialization (snapshotSetup) instead of
// the full sharedSetup used by report commands. This avoids source validation
// and policy processing for simple cache operations.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the cached master snapshot (speeds up repeated reports)",
	Long: `Manage the cache of joined master records shared by every report.

Basket stores the normalized and joined master records keyed by a
fingerprint of the source data and the reject-status policy. Reports on an
unchanged export skip the normalize and join steps entirely. A changed
export gets a new fingerprint and is rebuilt on the next run; --refresh
forces a rebuild.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached snapshots

Examples:
  # Check cache status
  basket snapshot status

  # Drop cached snapshots after reloading the source database
  basket snapshot clear`,
}

// snapshotClearCmd clears the snapshot cache.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached master snapshots",
	Long: `Delete all cached master snapshots from the configured backend.

Use this when:
- The source database was reloaded in place
- Cache storage is full
- A snapshot may be corrupted

For SQLite this removes the database file. For MySQL and PostgreSQL it
drops the cache table. For Redis it deletes the cache namespace.

Examples:
  # Clear the default SQLite cache
  basket snapshot clear

  # Clear a Redis cache
  basket snapshot clear --cache-backend redis --cache-db-connect redis://localhost:6379/0`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the handle opened during setup before removing the file
		iocache.CloseCaching()
		if err := iocache.ClearCache(cfg.CacheBackend, iocache.GetDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshot cache", err)
		}
		fmt.Println("Snapshot cache cleared successfully.")
	},
}

// snapshotStatusCmd shows snapshot cache status.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot cache statistics and connection details",
	Long: `Show information about the cached master snapshots.

Displays:
- Backend type and connection status
- Number of cached snapshots
- Newest and oldest snapshot timestamps
- Approximate storage size

Examples:
  # Check snapshot cache status
  basket snapshot status`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetSnapshotStore()
		if store == nil {
			contract.LogFatal("Failed to get snapshot status", fmt.Errorf("snapshot cache is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
