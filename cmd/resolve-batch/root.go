package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lineage/internal/batch"
	"lineage/internal/platform/config"
)

// runConfig is the effective configuration of one run after flags, LINEAGE_*
// environment variables and the optional config file are merged.
type runConfig struct {
	DatabaseURL     string        `yaml:"database-url"`
	RedisURL        string        `yaml:"redis-url"`
	Checkpoint      string        `yaml:"checkpoint"`
	BatchSize       int           `yaml:"batch-size"`
	StartOffset     int           `yaml:"start-offset"`
	MaxRecords      int           `yaml:"max-records"`
	Workers         int           `yaml:"workers"`
	Rate            float64       `yaml:"rate"`
	Timeout         time.Duration `yaml:"timeout"`
	MatchThreshold  float64       `yaml:"match-threshold"`
	ReviewThreshold float64       `yaml:"review-threshold"`
	LogLevel        string        `yaml:"log-level"`
}

func (c runConfig) batchOptions() batch.Options {
	return batch.Options{
		BatchSize:   c.BatchSize,
		StartOffset: c.StartOffset,
		MaxRecords:  c.MaxRecords,
		Workers:     c.Workers,
		Rate:        c.Rate,
		Timeout:     c.Timeout,
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "resolve-batch",
		Short: "Resolve unconfirmed name leads into canonical identities",
		Long: `resolve-batch pages through the unconfirmed_persons table and resolves
each lead: strong matches are linked as variants, plausible ones are queued
for review and the rest become new canonical identities.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (LINEAGE_*, e.g. LINEAGE_BATCH_SIZE)
  3. Config file (--config)
  4. Defaults

Example:
  resolve-batch --database-url postgres://localhost/lineage
  resolve-batch --start-offset 5000 --max-records 1000 --rate 50
  resolve-batch --checkpoint resolve:leads --redis-url redis://localhost:6379`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), loadRunConfig(v), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	def := batch.DefaultOptions()
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml)")
	flags.String("database-url", "", "identity Postgres database URL")
	flags.String("redis-url", "", "Redis URL for the resume checkpoint")
	flags.String("checkpoint", "", "Redis key storing the next offset to resume from")
	flags.Int("batch-size", def.BatchSize, "leads fetched per page")
	flags.Int("start-offset", 0, "first lead offset to process")
	flags.Int("max-records", 0, "maximum leads to process (0 = all)")
	flags.Int("workers", def.Workers, "concurrent resolutions")
	flags.Float64("rate", 0, "maximum resolutions per second (0 = unlimited)")
	flags.Duration("timeout", def.Timeout, "per-occurrence timeout")
	flags.Float64("match-threshold", config.DefaultResolution.MatchThreshold, "confidence at or above which a lead is linked")
	flags.Float64("review-threshold", config.DefaultResolution.ReviewThreshold, "confidence at or above which a lead is queued for review")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	_ = v.BindPFlags(flags)

	cmd.AddCommand(newConfigCmd(v))
	return cmd
}

// initConfig reads the config file, if any, and LINEAGE_* environment variables.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("LINEAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

func loadRunConfig(v *viper.Viper) runConfig {
	return runConfig{
		DatabaseURL:     v.GetString("database-url"),
		RedisURL:        v.GetString("redis-url"),
		Checkpoint:      v.GetString("checkpoint"),
		BatchSize:       v.GetInt("batch-size"),
		StartOffset:     v.GetInt("start-offset"),
		MaxRecords:      v.GetInt("max-records"),
		Workers:         v.GetInt("workers"),
		Rate:            v.GetFloat64("rate"),
		Timeout:         v.GetDuration("timeout"),
		MatchThreshold:  v.GetFloat64("match-threshold"),
		ReviewThreshold: v.GetFloat64("review-threshold"),
		LogLevel:        v.GetString("log-level"),
	}
}
