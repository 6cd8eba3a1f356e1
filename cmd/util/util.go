package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ValentinKolb/eKV/lib/common"
	"github.com/ValentinKolb/eKV/lib/store/lstore"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logger.GetLogger("cli")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the store configuration flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	defaults := common.DefaultStoreConfig()

	key := "file"
	cmd.PersistentFlags().String(key, defaults.File, WrapString("Snapshot file the store is loaded from and saved to"))

	key = "backend"
	cmd.PersistentFlags().String(key, defaults.Backend, WrapString("Storage backend for new stores (ordered, unordered). Existing snapshots keep their backend"))

	key = "serializer"
	cmd.PersistentFlags().String(key, defaults.Serializer, WrapString("Serializer for new stores (binary, json, gob)"))

	key = "compression"
	cmd.PersistentFlags().String(key, defaults.Compression, WrapString("Compression for new stores (lz4, zstd, snappy)"))

	key = "sweep-interval"
	cmd.PersistentFlags().Duration(key, defaults.SweepInterval, WrapString("Interval of the background expiration sweep (0 disables it)"))

	key = "backup-dir"
	cmd.PersistentFlags().String(key, defaults.BackupDir, WrapString("Directory for backups"))

	key = "log-level"
	cmd.PersistentFlags().String(key, defaults.LogLevel, WrapString("Log level (debug, info, warn, error)"))
}

// InitConfig loads .env files and configures viper to read EKV_* environment variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("ekv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() *common.StoreConfig {
	return &common.StoreConfig{
		Backend:       viper.GetString("backend"),
		Serializer:    viper.GetString("serializer"),
		Compression:   viper.GetString("compression"),
		SweepInterval: viper.GetDuration("sweep-interval"),
		File:          viper.GetString("file"),
		BackupDir:     viper.GetString("backup-dir"),
		LogLevel:      viper.GetString("log-level"),
	}
}

// OpenStore initializes logging and opens the store described by conf.
// The snapshot file is loaded if it exists, otherwise an empty store is created.
func OpenStore(conf *common.StoreConfig) (*lstore.Store, error) {
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return nil, err
	}

	opts, err := conf.Options()
	if err != nil {
		return nil, err
	}

	_, err = os.Stat(conf.File)
	switch {
	case err == nil:
		s, err := lstore.Load(conf.File, opts)
		if err != nil {
			return nil, err
		}
		if info := s.Info(); info.Backend != opts.Backend.String() {
			log.Warningf("snapshot %s uses the %s backend, ignoring --backend=%s", conf.File, info.Backend, opts.Backend)
		}
		return s, nil
	case errors.Is(err, fs.ErrNotExist):
		log.Infof("snapshot %s not found, starting with an empty store", conf.File)
		return lstore.New(opts)
	default:
		return nil, fmt.Errorf("cannot access snapshot %s: %w", conf.File, err)
	}
}
