package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/kclust"
	"github.com/hupe1980/kclust/blobstore"
	"github.com/hupe1980/kclust/blobstore/minio"
	"github.com/hupe1980/kclust/blobstore/s3"
	"github.com/hupe1980/kclust/codec"
	"github.com/hupe1980/kclust/consensus"
	kprom "github.com/hupe1980/kclust/metrics/prometheus"
	"github.com/hupe1980/kclust/report"
	"github.com/hupe1980/kclust/resource"
)

// Environment variables holding MinIO credentials.
const (
	envMinioAccessKey = "KCLUST_MINIO_ACCESS_KEY"
	envMinioSecretKey = "KCLUST_MINIO_SECRET_KEY"
)

// app holds the state shared by all commands.
type app struct {
	configPath string
	cfg        fileConfig

	logger *kclust.Logger
	store  blobstore.BlobStore
	rc     *resource.Controller
	codec  codec.Codec
}

func (a *app) init(cmd *cobra.Command) error {
	if a.configPath != "" {
		if err := loadConfigFile(cmd, a.configPath, &a.cfg); err != nil {
			return err
		}
	}

	logger, err := newLogger(a.cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger

	c, ok := codec.ByName(a.cfg.Codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", a.cfg.Codec)
	}
	a.codec = c

	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	a.rc = resource.NewController(resource.Config{
		MemoryLimitBytes:   a.cfg.MemoryLimitBytes,
		MaxWorkers:         int64(workers),
		IOLimitBytesPerSec: a.cfg.IOLimitBytesPerSec,
	})

	a.store, err = openStore(cmd.Context(), a.cfg.Store, os.Getenv)
	return err
}

func (a *app) trainerOptions() ([]kclust.Option, error) {
	mode, err := consensus.ParseAccuracyMode(a.cfg.AccuracyMode)
	if err != nil {
		return nil, err
	}
	return []kclust.Option{
		kclust.WithLogger(a.logger),
		kclust.WithMaxWorkers(a.cfg.Workers),
		kclust.WithResourceController(a.rc),
		kclust.WithAccuracyMode(mode),
		kclust.WithLabelClasses(a.cfg.Classes),
	}, nil
}

func (a *app) reportWriter() (*report.Writer, error) {
	c, err := report.ParseCompression(a.cfg.Compression)
	if err != nil {
		return nil, err
	}
	return report.NewWriter(a.store,
		report.WithCodec(a.codec),
		report.WithCompression(c),
		report.WithResourceController(a.rc),
		report.WithLogger(a.logger),
	), nil
}

// serveMetrics exposes a Prometheus collector on addr until the returned
// function is called. An empty addr disables the endpoint.
func (a *app) serveMetrics(addr string) (kclust.MetricsCollector, func(), error) {
	if addr == "" {
		return kclust.NoopMetricsCollector{}, func() {}, nil
	}

	reg := prometheus.NewRegistry()
	collector := kprom.NewCollector(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	return collector, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func openStore(ctx context.Context, cfg storeConfig, env func(string) string) (blobstore.BlobStore, error) {
	switch {
	case cfg.MinioEndpoint != "" && cfg.S3Bucket != "":
		return nil, errors.New("--minio-endpoint and --s3-bucket are mutually exclusive")

	case cfg.MinioEndpoint != "":
		if cfg.MinioBucket == "" {
			return nil, errors.New("--minio-bucket is required with --minio-endpoint")
		}
		client, err := miniogo.New(cfg.MinioEndpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(env(envMinioAccessKey), env(envMinioSecretKey), ""),
			Secure: cfg.MinioSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return minio.NewStore(client, cfg.MinioBucket, cfg.Prefix), nil

	case cfg.S3Bucket != "":
		var optFns []func(*config.LoadOptions) error
		if cfg.S3Region != "" {
			optFns = append(optFns, config.WithRegion(cfg.S3Region))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return s3.NewStore(awss3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.Prefix), nil

	default:
		return blobstore.NewLocalStore(cfg.Dir), nil
	}
}
