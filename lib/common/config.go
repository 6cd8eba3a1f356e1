package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/store/lstore"
)

// --------------------------------------------------------------------------
// Store configuration struct
// --------------------------------------------------------------------------

// StoreConfig holds the configuration of a store as read from flags and environment
type StoreConfig struct {
	// Storage
	Backend     string
	Serializer  string
	Compression string

	// Expiration
	SweepInterval time.Duration

	// Persistence
	File      string
	BackupDir string

	// Logging configuration
	LogLevel string
}

// DefaultStoreConfig returns the configuration used when nothing is set
func DefaultStoreConfig() StoreConfig {
	defaults := codec.DefaultConfig()
	return StoreConfig{
		Backend:     db.KindOrdered.String(),
		Serializer:  string(defaults.Serializer),
		Compression: string(defaults.Compression),
		File:        "ekv.db",
		BackupDir:   "backups",
		LogLevel:    "warn",
	}
}

// Options converts the configuration into store options.
// An unknown backend name is an error, codec names are checked by lstore.New.
func (c *StoreConfig) Options() (lstore.Options, error) {
	kind, err := db.ParseKind(c.Backend)
	if err != nil {
		return lstore.Options{}, err
	}
	return lstore.Options{
		Backend: kind,
		Codec: codec.Config{
			Serializer:  codec.SerializerType(strings.ToLower(c.Serializer)),
			Compression: codec.CompressionType(strings.ToLower(c.Compression)),
		},
		SweepInterval: c.SweepInterval,
	}, nil
}

// String returns a formatted string representation of the configuration
func (c *StoreConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Storage")
	addField("Backend", c.Backend)
	addField("Serializer", c.Serializer)
	addField("Compression", c.Compression)

	addSection("Expiration")
	if c.SweepInterval > 0 {
		addField("Sweep Interval", c.SweepInterval.String())
	} else {
		addField("Sweep Interval", "disabled")
	}

	addSection("Persistence")
	addField("Snapshot File", c.File)
	addField("Backup Directory", c.BackupDir)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
