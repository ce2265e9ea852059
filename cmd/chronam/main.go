// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the chronam CLI, which searches
// Chronicling America's digitized newspaper pages for an exact phrase.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/chronam/internal/logging"
	"github.com/pdiddy/chronam/internal/search"
	"github.com/pdiddy/chronam/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "chronam/0.1"
)

// rootCmd is the base command for the chronam CLI.
var rootCmd = &cobra.Command{
	Use:   "chronam",
	Short: "Search historic newspaper pages on Chronicling America",
	Long: `chronam queries the Library of Congress Chronicling America page search
API for an exact phrase, walks every result page, and prints the matching
newspaper pages or writes them to a JSON, CSV, YAML or SQLite file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(types.LoggingConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		}, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./chronam.yaml or ~/.config/chronam/chronam.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "auto", "log format: text, json, or auto")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("search.base_url", search.DefaultBaseURL)
	viper.SetDefault("search.user_agent", defaultUserAgent)
	viper.SetDefault("search.timeout", defaultTimeout)
	viper.SetDefault("search.start_page", 1)
	viper.SetDefault("search.breaker_threshold", 3)
	viper.SetDefault("search.count_policy", string(types.CountAtMost))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: could not load .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("chronam")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "chronam"))
		}
	}

	viper.SetEnvPrefix("CHRONAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
