package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/responsio/internal/logging"
	"github.com/aretw0/responsio/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "responsio",
	Short: "Responsio is a chat client for the responsio service",
	Long: `Responsio talks to a responsio chat service from the terminal and manages
the conversation history it keeps between runs.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultFile, "Settings file")
	flags.String("url", "", "Asset root of the chat service (e.g. https://chat.example.com/)")
	flags.String("identity", "", "Client identity")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("storage", "", "Storage driver: file, redis, sqlite or memory")
	flags.String("storage-path", "", "Directory (file) or database (sqlite) holding the history")
	flags.String("redis-addr", "", "Redis address for the redis driver")
	flags.String("encryption-key", "", "Base64 AES-256 key encrypting the stored history")
}

// loadSettings reads the settings file and applies the flags that were set.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	s, err := config.Load(path)
	if err != nil {
		return s, err
	}

	override := func(flag string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	override("url", &s.URL)
	override("identity", &s.Identity)
	override("log-level", &s.LogLevel)
	override("storage", &s.Storage.Driver)
	override("storage-path", &s.Storage.Path)
	override("redis-addr", &s.Storage.Redis.Addr)
	override("encryption-key", &s.Storage.EncryptionKey)

	if s.Storage.Driver == config.DriverSQLite && !cmd.Flags().Changed("storage-path") && s.Storage.Path == config.Defaults().Storage.Path {
		s.Storage.Path = ".responsio/storage.db"
	}
	return s, s.Validate()
}

func newLogger(s config.Settings) (*slog.Logger, error) {
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
