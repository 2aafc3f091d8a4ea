// Package main provides the kclust CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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
	app := &app{cfg: defaultFileConfig()}

	rootCmd := &cobra.Command{
		Use:   "kclust",
		Short: "k-means++ clustering with parallel restarts",
		Long: `kclust trains k-means models on IDX image sets, keeps the restart
with the lowest inertia and reports how well the clusters agree with the
labels.

Data sets and reports live in a blob store: a local directory (default),
a MinIO bucket (--minio-endpoint) or an S3 bucket (--s3-bucket).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.configPath, "config", "", "YAML config file (flags override its values)")
	pf.StringVar(&app.cfg.Log.Level, "log-level", app.cfg.Log.Level, "Log level (debug, info, warn, error)")
	pf.BoolVar(&app.cfg.Log.JSON, "log-json", app.cfg.Log.JSON, "Log as JSON")
	pf.StringVar(&app.cfg.Store.Dir, "dir", app.cfg.Store.Dir, "Local store directory")
	pf.StringVar(&app.cfg.Store.Prefix, "prefix", app.cfg.Store.Prefix, "Key prefix inside the bucket")
	pf.StringVar(&app.cfg.Store.MinioEndpoint, "minio-endpoint", "", "MinIO endpoint (host:port)")
	pf.StringVar(&app.cfg.Store.MinioBucket, "minio-bucket", "", "MinIO bucket")
	pf.BoolVar(&app.cfg.Store.MinioSecure, "minio-secure", false, "Use TLS for MinIO")
	pf.StringVar(&app.cfg.Store.S3Bucket, "s3-bucket", "", "S3 bucket")
	pf.StringVar(&app.cfg.Store.S3Region, "s3-region", "", "S3 region (default from the AWS config chain)")
	pf.Int64Var(&app.cfg.IOLimitBytesPerSec, "io-limit", 0, "Store I/O limit in bytes per second (0 = unlimited)")
	pf.StringVar(&app.cfg.Codec, "codec", app.cfg.Codec, "Report JSON codec (go-json, json)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kclust v%s (%s)\n", version, commit)
		},
	})
	rootCmd.AddCommand(newTrainCmd(app))
	rootCmd.AddCommand(newEvaluateCmd(app))
	rootCmd.AddCommand(newShowCmd(app))

	return rootCmd
}
