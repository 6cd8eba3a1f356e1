// Package common provides the configuration and logging setup shared by the
// command line tool and embedding applications.
//
//   - StoreConfig: backend, codec, sweep interval, snapshot file and log level,
//     convertible into lstore.Options
//   - InitLoggers / ResetLoggers: install a formatted logger factory for the
//     dragonboat logger package, which every package of this module logs through
package common
