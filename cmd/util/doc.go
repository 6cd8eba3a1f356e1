// Package util contains helpers shared by the commands: help text wrapping,
// flag and environment configuration (viper, godotenv) and opening the store
// from its snapshot file.
package util
