// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trial-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/trial-engine/internal/registry"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the trial-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "trial-engine",
	Short: "Retrieve and enrich clinical trial records",
	Long: `trial-engine retrieves clinical trial records from the public registry
API, classifies them by intervention, enriches them into flat analysis-ready
rows, and exports the results.

Use search to run a full retrieval, or get to fetch a single trial by its
NCT identifier.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trial-engine.yaml or ~/.config/trial-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trial-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "trial-engine"))
		}
	}

	viper.SetDefault("registry.base_url", registry.DefaultBaseURL)
	viper.SetDefault("registry.request_interval", "1s")
	viper.SetDefault("registry.page_size", 100)
	viper.SetDefault("registry.max_retries", 3)
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.user_agent", "trial-engine/"+version)
	viper.SetDefault("export.output_dir", "data/exports")
	viper.SetDefault("export.format", "csv")

	viper.SetEnvPrefix("TRIAL_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// registryConfig assembles a RegistryConfig from viper settings.
func registryConfig() types.RegistryConfig {
	return types.RegistryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viperDuration("http.timeout", 30*time.Second),
			UserAgent: viper.GetString("http.user_agent"),
		},
		BaseURL:         viper.GetString("registry.base_url"),
		RequestInterval: viperDuration("registry.request_interval", time.Second),
		PageSize:        viper.GetInt("registry.page_size"),
		MaxRetries:      viper.GetInt("registry.max_retries"),
	}
}

// exportConfig assembles an ExportConfig from viper settings.
func exportConfig() types.ExportConfig {
	return types.ExportConfig{
		OutputDir: viper.GetString("export.output_dir"),
		Format:    viper.GetString("export.format"),
	}
}

func viperDuration(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
