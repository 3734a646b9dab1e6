package env

import (
	"log"
	"os"

	"github.com/agentuity/go-cacheadapter/logger"
	"github.com/spf13/cobra"
)

// EnvConfig names the configuration file when --config is not given.
const EnvConfig = "CACHEADAPTER_CONFIG"

// DefaultConfigFile is used when neither --config nor CACHEADAPTER_CONFIG is set.
const DefaultConfigFile = "cacheadapter.yaml"

// FlagOrEnv will try and get a flag from the cobra.Command and if not found, look it up in the environment
// and fallback to defaultValue if non found
func FlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue string) string {
	flagValue, _ := cmd.Flags().GetString(flagName)
	if flagValue != "" {
		return flagValue
	}
	if val, ok := os.LookupEnv(envName); ok {
		return val
	}
	return defaultValue
}

// LogLevel reads --log-level, then CACHEADAPTER_LOG_LEVEL, defaulting to info.
func LogLevel(cmd *cobra.Command) logger.LogLevel {
	return logger.ParseLevel(FlagOrEnv(cmd, "log-level", logger.EnvLogLevel, "info"), logger.LevelInfo)
}

// ConfigFile reads --config, then CACHEADAPTER_CONFIG.
func ConfigFile(cmd *cobra.Command) string {
	if p := FlagOrEnv(cmd, "config", EnvConfig, ""); p != "" {
		return p
	}
	return DefaultConfigFile
}

// NewLogger returns a console logger by first checking the cobra.Command log-level flag, then use the
// CACHEADAPTER_LOG_LEVEL environment value and falling back to the info logger level
func NewLogger(cmd *cobra.Command) logger.Logger {
	log.SetFlags(0)
	return logger.NewConsoleLogger(LogLevel(cmd))
}
