// Package main provides the isodata command line tool.
//
// Usage:
//
//	isodata run -i data.txt -o clusters.txt --target 4 --initial 90
//	isodata run --config isodata.yaml --metrics-file isodata.prom
//	isodata validate -i s3://datasets/points.csv.zst
//	isodata version
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hupe1980/isodata"
	"github.com/hupe1980/isodata/dataset"
	"github.com/hupe1980/isodata/report"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "isodata",
		Short: "ISODATA clustering for delimited numeric datasets",
		Long: `isodata partitions a dataset of numeric rows into a self-adjusting
number of clusters. Clusters below the minimum size are discarded,
widely dispersed clusters are split and close clusters are merged.

Datasets and reports can live on the local disk, in S3 (s3://bucket/key)
or on a MinIO endpoint (minio://bucket/key). Names ending in .zst or .lz4
are decompressed on read and compressed on write.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster a dataset and write the report",
		RunE:  runClustering,
	}
	addDataFlags(runCmd)
	runCmd.Flags().StringP("output", "o", "", "Report destination (empty string disables)")
	runCmd.Flags().String("format", "", "Report format: summary, clusters or json")
	runCmd.Flags().Int64("seed", 0, "Random seed (0 uses the clock)")
	runCmd.Flags().Float64("split-coefficient", 0, "Split offset coefficient")
	runCmd.Flags().Int("target", 0, "Target cluster count")
	runCmd.Flags().Int("initial", 0, "Initial seed count")
	runCmd.Flags().Int("min-size", 0, "Minimum cluster size")
	runCmd.Flags().Float64("split-threshold", 0, "Standard deviation split threshold")
	runCmd.Flags().Float64("merge-distance", 0, "Center distance merge threshold")
	runCmd.Flags().Int("max-merges", 0, "Candidate pairs per merge pass")
	runCmd.Flags().Int("max-rounds", 0, "Number of rounds")
	runCmd.Flags().String("log-format", "", "Log format: text or json")
	runCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error")
	runCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the summary to stdout")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and dataset without clustering",
		RunE:  runValidate,
	}
	addDataFlags(validateCmd)
	validateCmd.Flags().Int("target", 0, "Target cluster count")
	validateCmd.Flags().Int("min-size", 0, "Minimum cluster size")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "isodata v%s (%s)\n", version, commit)
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd, versionCmd)
	return rootCmd
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Dataset location")
	cmd.Flags().String("delimiter", "", "Feature delimiter")
	cmd.Flags().Bool("header", false, "Skip the first line of the dataset")
}

// loadConfig reads --config and applies every flag the user set.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	flt := func(name string, dst *float64) {
		if flags.Changed(name) {
			*dst, _ = flags.GetFloat64(name)
		}
	}

	str("input", &cfg.Input.Path)
	str("delimiter", &cfg.Input.Delimiter)
	if flags.Changed("header") {
		cfg.Input.Header, _ = flags.GetBool("header")
	}
	str("output", &cfg.Output.Path)
	str("format", &cfg.Output.Format)
	str("log-format", &cfg.Log.Format)
	str("log-level", &cfg.Log.Level)
	str("metrics-file", &cfg.Metrics.File)
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	flt("split-coefficient", &cfg.SplitCoefficient)

	num("target", &cfg.Params.TargetClusters)
	num("initial", &cfg.Params.InitialClusters)
	num("min-size", &cfg.Params.MinClusterSize)
	flt("split-threshold", &cfg.Params.SplitThreshold)
	flt("merge-distance", &cfg.Params.MergeDistance)
	num("max-merges", &cfg.Params.MaxMerges)
	num("max-rounds", &cfg.Params.MaxRounds)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg LogConfig, w io.Writer) (*isodata.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return isodata.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return isodata.NewLogger(slog.NewTextHandler(w, opts)), nil
}

func openSource(ctx context.Context, cfg *Config) (isodata.DataSource, error) {
	loc, err := parseLocation(cfg.Input.Path)
	if err != nil {
		return nil, err
	}
	store, name, err := openStore(ctx, loc, cfg)
	if err != nil {
		return nil, err
	}
	return dataset.FromBlob(ctx, store, name, cfg.parseOptions()...), nil
}

func outputSink(ctx context.Context, cfg *Config) (isodata.Sink, error) {
	if cfg.Output.Path == "" {
		return nil, nil
	}
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	loc, err := parseLocation(cfg.Output.Path)
	if err != nil {
		return nil, err
	}
	store, name, err := openStore(ctx, loc, cfg)
	if err != nil {
		return nil, err
	}
	return report.ToBlob(store, name, format), nil
}

func runClustering(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}

	var sinks []isodata.Sink
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		sinks = append(sinks, report.ToWriter(cmd.OutOrStdout(), report.FormatSummary))
	}
	out, err := outputSink(ctx, cfg)
	if err != nil {
		return err
	}
	sinks = append(sinks, out)

	opts := append(cfg.engineOptions(),
		isodata.WithLogger(logger),
		isodata.WithSink(report.Tee(sinks...)),
	)

	var metrics *promCollector
	if cfg.Metrics.File != "" {
		metrics = newPromCollector()
		opts = append(opts, isodata.WithMetricsCollector(metrics))
	}

	eng, err := isodata.New(src, cfg.Params, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	res, runErr := eng.Run(ctx)
	logger.InfoContext(ctx, "clustering finished",
		"run_id", res.RunID,
		"input", cfg.Input.Path,
		"output", cfg.Output.Path,
		"clusters", res.Len(),
		"elapsed", time.Since(start),
	)

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
			logger.WarnContext(ctx, "failed to write metrics", "file", cfg.Metrics.File, "error", err)
		}
	}
	return runErr
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	rows, err := src()
	if err != nil {
		return err
	}
	dim, err := isodata.ValidateDataset(rows, cfg.Params)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d dimensions\n", cfg.Input.Path, len(rows), dim)
	return nil
}
