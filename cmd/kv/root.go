package kv

import (
	"github.com/ValentinKolb/eKV/cmd/util"
	"github.com/ValentinKolb/eKV/lib/common"
	"github.com/ValentinKolb/eKV/lib/store/lstore"
	"github.com/spf13/cobra"
)

var (
	localStore *lstore.Store
	storeConf  *common.StoreConfig

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations on a snapshot file",
		PersistentPreRunE:  setupStore,
		PersistentPostRunE: closeStore,
	}
)

func init() {
	// Add store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(queryCmd)
	KeyValueCommands.AddCommand(lookupCmd)
	KeyValueCommands.AddCommand(sweepCmd)
	KeyValueCommands.AddCommand(backupCmd)
	KeyValueCommands.AddCommand(restoreCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStore opens the store from the configured snapshot file
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	storeConf = util.GetStoreConfig()

	// the perf command works on its own in-memory stores
	if cmd == perfTestCmd {
		return nil
	}

	var err error
	localStore, err = util.OpenStore(storeConf)
	return err
}

func closeStore(_ *cobra.Command, _ []string) error {
	if localStore == nil {
		return nil
	}
	return localStore.Close()
}

// persist writes the store back to the snapshot file
func persist() error {
	return localStore.Save(storeConf.File)
}
