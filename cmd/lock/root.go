package lock

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/eKV/cmd/util"
	"github.com/ValentinKolb/eKV/lib/common"
	"github.com/ValentinKolb/eKV/lib/lockmgr"
	"github.com/ValentinKolb/eKV/lib/store/lstore"
	"github.com/spf13/cobra"
)

var (
	localStore     *lstore.Store
	storeConf      *common.StoreConfig
	lockMgr        lockmgr.ILockManager
	acquireTimeout time.Duration

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:                "lock",
		Short:              "Perform lock operations on a snapshot file",
		PersistentPreRunE:  setupLockManager,
		PersistentPostRunE: closeStore,
	}

	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire [key]",
		Short: "Acquire a lock",
		Args:  cobra.ExactArgs(1),
		RunE:  runAcquire,
	}

	// releaseCmd represents the release command
	releaseCmd = &cobra.Command{
		Use:   "release [key] [ownerID]",
		Short: "Release a previously acquired lock",
		Long:  "Release a lock using the key and owner ID. The owner ID is the hex string printed by the acquire command.",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelease,
	}
)

func init() {
	// Add subcommands to lock command
	LockCommands.AddCommand(acquireCmd)
	LockCommands.AddCommand(releaseCmd)

	// Add store flags to the lock command
	util.SetupStoreFlags(LockCommands)

	// Add flags specific to acquire
	acquireCmd.Flags().DurationVar(&acquireTimeout, "timeout", 30*time.Second, "Lock timeout (0 for no timeout)")
}

// setupLockManager opens the store and creates the lock manager on top of it
func setupLockManager(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	storeConf = util.GetStoreConfig()

	var err error
	localStore, err = util.OpenStore(storeConf)
	if err != nil {
		return err
	}

	lockMgr = lockmgr.NewLockManager(localStore)
	return nil
}

func closeStore(_ *cobra.Command, _ []string) error {
	if localStore == nil {
		return nil
	}
	return localStore.Close()
}

// runAcquire handles the acquire lock command
func runAcquire(_ *cobra.Command, args []string) error {
	key := args[0]

	acquired, ownerID, err := lockMgr.AcquireLock(key, acquireTimeout)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %v", err)
	}

	if !acquired {
		fmt.Printf("acquired=false\n")
		return nil
	}

	if err := localStore.Save(storeConf.File); err != nil {
		return err
	}

	fmt.Printf("acquired=true, ownerId=%s\n", ownerID)
	return nil
}

// runRelease handles the release lock command
func runRelease(_ *cobra.Command, args []string) error {
	key := args[0]
	ownerID := args[1]

	released, err := lockMgr.ReleaseLock(key, ownerID)
	if err != nil {
		return fmt.Errorf("failed to release lock: %v", err)
	}

	if released {
		if err := localStore.Save(storeConf.File); err != nil {
			return err
		}
	}

	fmt.Printf("released=%v\n", released)
	return nil
}
