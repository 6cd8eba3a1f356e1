package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ValentinKolb/eKV/lib/query"
	"github.com/ValentinKolb/eKV/lib/value"
	"github.com/spf13/cobra"
)

var (
	setTTL      time.Duration
	setAsString bool
	infoMetrics bool
)

// parseValue reads a value literal, or takes the argument verbatim with --string
func parseValue(arg string, asString bool) (value.Value, error) {
	if asString {
		return value.String(arg), nil
	}
	v, err := value.Parse(arg)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w (use --string to store the argument as text)", err)
	}
	return v, nil
}

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Long: `Sets the value for a key. The value is a literal: null, true, false,
an integer (42), a float (1.5) or a quoted string ('"text"').`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			v, err := parseValue(args[1], setAsString)
			if err != nil {
				return err
			}
			if err := localStore.Insert(key, v, setTTL); err != nil {
				return err
			}
			if err := persist(); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Long:  "Reads the value for a key. Expired values are returned until they are swept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			v, ok, err := localStore.Get(key)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("key=%s, found=false\n", key)
				return nil
			}
			fmt.Printf("key=%s, found=true, value=%s\n", key, v.Literal())
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localStore.Remove(args[0]); err != nil {
				return err
			}
			if err := persist(); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	queryCmd = &cobra.Command{
		Use:   "query [expression]",
		Short: "Returns the values matching a query",
		Long: `Returns the values matching a query such as 'temp > 20 AND temp <= 30'.
Every condition compares the value stored under the named key, so conditions
on different keys never match together. An empty expression matches everything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := ""
			if len(args) == 1 {
				expr = args[0]
			}
			q, err := query.Parse(expr)
			if err != nil {
				return err
			}
			results, err := localStore.Execute(q)
			if err != nil {
				return err
			}
			for _, v := range results {
				fmt.Println(v.Literal())
			}
			fmt.Printf("%d result(s)\n", len(results))
			return nil
		},
	}
	lookupCmd = &cobra.Command{
		Use:   "lookup [value]",
		Short: "Lists the keys holding a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[0], setAsString)
			if err != nil {
				return err
			}
			keys, err := localStore.Lookup(v)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			fmt.Printf("%d key(s)\n", len(keys))
			return nil
		},
	}
	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Removes all expired entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := localStore.RemoveExpired()
			if err != nil {
				return err
			}
			if n > 0 {
				if err := persist(); err != nil {
					return err
				}
			}
			fmt.Printf("removed=%d\n", n)
			return nil
		},
	}
	backupCmd = &cobra.Command{
		Use:   "backup [dir]",
		Short: "Writes a timestamped backup of the store",
		Long: `Writes backup_<YYYYMMDD_HHMMSS>.db into dir (default: --backup-dir).
Two backups within the same second share a name, the later one wins.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := storeConf.BackupDir
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := localStore.Backup(dir)
			if err != nil {
				return err
			}
			fmt.Printf("backup=%s\n", path)
			return nil
		},
	}
	restoreCmd = &cobra.Command{
		Use:   "restore [file]",
		Short: "Replaces the store with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := localStore.Restore(args[0]); err != nil {
				return err
			}
			if err := persist(); err != nil {
				return err
			}
			fmt.Println("restore successfully")
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints configuration and statistics of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(storeConf.String())

			data, err := json.MarshalIndent(localStore.Info(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))

			if infoMetrics {
				fmt.Println()
				localStore.WriteMetrics(os.Stdout)
			}
			return nil
		},
	}
)

func init() {
	setCmd.Flags().DurationVar(&setTTL, "ttl", 0, "Time to live of the value, e.g. 10s (0 for no expiration)")
	setCmd.Flags().BoolVar(&setAsString, "string", false, "Store the value argument as text instead of parsing it")
	lookupCmd.Flags().BoolVar(&setAsString, "string", false, "Look up the value argument as text instead of parsing it")
	infoCmd.Flags().BoolVar(&infoMetrics, "metrics", false, "Also print the operation counters in Prometheus format")
}
