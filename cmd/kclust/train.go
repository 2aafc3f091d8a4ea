package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kclust"
	"github.com/hupe1980/kclust/dataset"
	"github.com/hupe1980/kclust/report"
)

type trainFlags struct {
	images, labels         string
	testImages, testLabels string
	out                    string
}

func newTrainCmd(a *app) *cobra.Command {
	var f trainFlags

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model and write its report",
		Example: `  kclust train --dir ./data --images train-images.idx.gz --labels train-labels.idx.gz \
      --test-images t10k-images.idx.gz --test-labels t10k-labels.idx.gz --k 10 --n-tries 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, a, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.images, "images", "", "IDX image file in the store")
	fl.StringVar(&f.labels, "labels", "", "IDX label file in the store")
	fl.StringVar(&f.testImages, "test-images", "", "Held-out IDX image file")
	fl.StringVar(&f.testLabels, "test-labels", "", "Held-out IDX label file")
	fl.StringVar(&f.out, "out", "", "Report prefix (default runs/<run-id>)")
	fl.IntVar(&a.cfg.Train.K, "k", a.cfg.Train.K, "Number of clusters")
	fl.IntVar(&a.cfg.Train.NTries, "n-tries", a.cfg.Train.NTries, "Number of restarts")
	fl.IntVar(&a.cfg.Train.NIter, "n-iter", a.cfg.Train.NIter, "Lloyd iterations per restart")
	fl.Int64Var(&a.cfg.Train.Seed, "seed", a.cfg.Train.Seed, "Random seed")
	fl.IntVar(&a.cfg.Workers, "workers", 0, "Concurrent restarts (default GOMAXPROCS)")
	fl.StringVar(&a.cfg.AccuracyMode, "accuracy-mode", a.cfg.AccuracyMode, "Accuracy rows: cluster or plurality")
	fl.IntVar(&a.cfg.Classes, "classes", 0, "Label classes (default max label + 1)")
	fl.Int64Var(&a.cfg.MemoryLimitBytes, "memory-limit", 0, "Working memory limit in bytes (0 = unlimited)")
	fl.StringVar(&a.cfg.Compression, "compression", a.cfg.Compression, "Report compression (none, lz4, zstd)")
	fl.StringVar(&a.cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while training")
	_ = cmd.MarkFlagRequired("images")

	return cmd
}

func runTrain(cmd *cobra.Command, a *app, f trainFlags) error {
	ctx := cmd.Context()

	if f.testImages != "" && f.testLabels == "" {
		return errors.New("--test-images requires --test-labels")
	}

	w, err := a.reportWriter()
	if err != nil {
		return err
	}
	opts, err := a.trainerOptions()
	if err != nil {
		return err
	}
	mc, stop, err := a.serveMetrics(a.cfg.MetricsAddr)
	if err != nil {
		return err
	}
	defer stop()
	opts = append(opts, kclust.WithMetricsCollector(mc))

	tr, err := kclust.New(a.cfg.Train, opts...)
	if err != nil {
		return err
	}

	train, err := dataset.Load(ctx, a.store, f.images, f.labels, dataset.WithResourceController(a.rc))
	if err != nil {
		return err
	}
	a.logger.Info("loaded training set", "images", f.images, "points", train.Matrix.Len(), "dimension", train.Matrix.Dim())

	mdl, err := tr.Fit(ctx, train.Matrix, train.Labels)
	if err != nil {
		return err
	}
	for _, ferr := range mdl.Failures() {
		a.logger.Warn("restart failed", "error", ferr)
	}

	r := report.New(mdl)
	if f.testImages != "" {
		// A broken test set must not discard the trained model.
		if err := evaluateTestSet(ctx, a, mdl, r, f); err != nil {
			a.logger.Warn("test evaluation skipped", "images", f.testImages, "error", err)
			fmt.Fprintf(cmd.OutOrStdout(), "test evaluation skipped: %v\n", err)
		}
	}

	out := f.out
	if out == "" {
		out = "runs/" + r.RunID.String()
	}
	keys, err := w.Write(ctx, out, r)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), r)
	fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %d blobs to %s\n", len(keys), out)
	return nil
}

func evaluateTestSet(ctx context.Context, a *app, mdl *kclust.Model, r *report.Report, f trainFlags) error {
	test, err := dataset.Load(ctx, a.store, f.testImages, f.testLabels, dataset.WithResourceController(a.rc))
	if err != nil {
		return err
	}
	c, err := mdl.Evaluate(test.Matrix, test.Labels)
	if err != nil {
		return err
	}
	r.AddEvaluation("test", c)
	return nil
}
