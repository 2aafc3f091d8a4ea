package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/kclust"
)

type fileConfig struct {
	Train kclust.Config `yaml:"train"`

	Workers          int    `yaml:"workers"`
	AccuracyMode     string `yaml:"accuracy_mode"`
	Classes          int    `yaml:"classes"`
	MemoryLimitBytes int64  `yaml:"memory_limit_bytes"`

	IOLimitBytesPerSec int64  `yaml:"io_limit_bytes_per_sec"`
	Compression        string `yaml:"compression"`
	Codec              string `yaml:"codec"`
	MetricsAddr        string `yaml:"metrics_addr"`

	Store storeConfig `yaml:"store"`
	Log   logConfig   `yaml:"log"`
}

type storeConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`

	MinioEndpoint string `yaml:"minio_endpoint"`
	MinioBucket   string `yaml:"minio_bucket"`
	MinioSecure   bool   `yaml:"minio_secure"`

	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
}

type logConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Train:        kclust.DefaultConfig(),
		AccuracyMode: "cluster",
		Compression:  "zstd",
		Codec:        "go-json",
		Store:        storeConfig{Dir: "."},
		Log:          logConfig{Level: "info"},
	}
}

// loadConfigFile reads path into cfg. Flags set on the command line keep
// their values.
func loadConfigFile(cmd *cobra.Command, path string, cfg *fileConfig) error {
	set := map[*pflag.Flag]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		set[f] = f.Value.String()
	})

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	for f, v := range set {
		if err := f.Value.Set(v); err != nil {
			return fmt.Errorf("config: flag --%s: %w", f.Name, err)
		}
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

func newLogger(cfg logConfig) (*kclust.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.JSON {
		return kclust.NewJSONLogger(level), nil
	}
	return kclust.NewTextLogger(level), nil
}
