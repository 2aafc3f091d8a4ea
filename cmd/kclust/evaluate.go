package main

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kclust/dataset"
	"github.com/hupe1980/kclust/report"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var run, images, labels, name string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a stored model on a labelled data set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := report.ValidateName(name); err != nil {
				return err
			}

			r, err := report.Load(ctx, a.store, run, a.codec)
			if err != nil {
				return err
			}
			mdl, err := r.Model()
			if err != nil {
				return err
			}

			ds, err := dataset.Load(ctx, a.store, images, labels, dataset.WithResourceController(a.rc))
			if err != nil {
				return err
			}
			c, err := mdl.Evaluate(ds.Matrix, ds.Labels)
			if err != nil {
				return err
			}
			r.AddEvaluation(name, c)

			w, err := a.reportWriter()
			if err != nil {
				return err
			}
			keys, err := w.Write(ctx, run, r)
			if err != nil {
				return err
			}
			if err := pruneReports(ctx, a, run, keys); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d points, purity %.4f\n", name, len(c.Assignment()), c.Purity())
			fmt.Fprint(out, report.FormatAccuracy(r.Evaluations[name].Accuracy))
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&run, "run", "", "Report prefix of the trained model")
	fl.StringVar(&images, "images", "", "IDX image file in the store")
	fl.StringVar(&labels, "labels", "", "IDX label file in the store")
	fl.StringVar(&name, "name", "eval", "Evaluation name in the report")
	fl.StringVar(&a.cfg.Compression, "compression", a.cfg.Compression, "Report compression (none, lz4, zstd)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("images")
	_ = cmd.MarkFlagRequired("labels")

	return cmd
}

// pruneReports removes report.json variants under run that were not just
// written, e.g. after switching compression.
func pruneReports(ctx context.Context, a *app, run string, keep []string) error {
	base := path.Join(run, report.ReportName)
	names, err := a.store.List(ctx, base)
	if err != nil {
		return err
	}
	for _, name := range names {
		if strings.HasPrefix(name, base) && !slices.Contains(keep, name) {
			if err := a.store.Delete(ctx, name); err != nil {
				return err
			}
		}
	}
	return nil
}
