// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfbuddy CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfbuddy/internal/logging"
	"github.com/pdiddy/pdfbuddy/internal/progress"
	"github.com/pdiddy/pdfbuddy/internal/secrets"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, or the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the pdfbuddy CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfbuddy",
	Short: "Merge, split, compress and convert documents with a remote PDF service",
	Long: `pdfbuddy sends documents to a PDF conversion API and saves the result.

Each tool is a subcommand: merge, split, compress, and convert for the
format conversions (PDF to Word, Excel or PowerPoint and back). The watch
subcommand turns a directory into a drop zone. Past jobs are listed by
history.

The API base URL comes from --base-url, PDFBUDDY_BASE_URL, or base_url in
pdfbuddy.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Configure(logging.Config{
			Level:  viper.GetString("log_level"),
			Pretty: viper.GetBool("log_pretty"),
		})
		log := logging.WithComponent("cli")

		s, err := secrets.Load(".secrets/", log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug().Str("file", used).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pdfbuddy.yaml or ~/.config/pdfbuddy/pdfbuddy.yaml)")
	pf.String("base-url", "", "conversion API base URL")
	pf.Duration("timeout", 0, "HTTP request timeout (0 = none)")
	pf.StringP("output-dir", "o", "", "directory results are saved to")
	pf.Bool("overwrite", false, "replace existing output files")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("no-history", false, "do not record jobs in the history database")

	bindFlag("http.base_url", "base-url")
	bindFlag("http.timeout", "timeout")
	bindFlag("output.dir", "output-dir")
	bindFlag("output.overwrite", "overwrite")
	bindFlag("log_level", "log-level")
	bindFlag("history.disabled", "no-history")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfbuddy")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfbuddy"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("PDFBUDDY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("http.base_url", "PDFBUDDY_BASE_URL", "PDFBUDDY_HTTP_BASE_URL")
	_ = viper.BindEnv("http.api_token", "PDFBUDDY_API_TOKEN", "PDFBUDDY_HTTP_API_TOKEN")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "reading config:", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("http.base_url", "")
	viper.SetDefault("http.timeout", 2*time.Minute)
	viper.SetDefault("http.user_agent", "pdfbuddy/"+version)
	viper.SetDefault("http.api_token", "")
	viper.SetDefault("progress.interval", progress.DefaultInterval)
	viper.SetDefault("progress.step", progress.DefaultStep)
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.overwrite", false)
	viper.SetDefault("history.path", defaultHistoryPath())
	viper.SetDefault("history.max_results", 20)
	viper.SetDefault("history.disabled", false)
	viper.SetDefault("watch.dir", "")
	viper.SetDefault("watch.settle", 500*time.Millisecond)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_pretty", true)
}

func defaultHistoryPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pdfbuddy", "history.db")
	}
	return filepath.Join(".pdfbuddy", "history.db")
}

// loadConfig assembles the effective configuration from flags, environment,
// config file and secrets.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.HTTP.APIToken = secretDefault(secrets.KeyAPIToken, cfg.HTTP.APIToken)
	if viper.GetBool("history.disabled") {
		cfg.History.Path = ""
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
