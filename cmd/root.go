package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/eKV/cmd/kv"
	"github.com/ValentinKolb/eKV/cmd/lock"
	"github.com/ValentinKolb/eKV/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ekv",
		Short: "embedded key-value store",
		Long: fmt.Sprintf(`eKV (v%s)

An embedded key-value store with typed values, TTL expiration,
a reverse value index, simple queries and snapshot persistence.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of eKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("eKV v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
