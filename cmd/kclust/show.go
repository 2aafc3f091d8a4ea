package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kclust/report"
)

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [run]",
		Short: "List stored runs or print one report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				runs, err := report.Runs(ctx, a.store, "")
				if err != nil {
					return err
				}
				for _, run := range runs {
					fmt.Fprintln(out, run)
				}
				return nil
			}

			r, err := report.Load(ctx, a.store, args[0], a.codec)
			if err != nil {
				return err
			}
			printReport(out, r)
			return nil
		},
	}
	return cmd
}

func printReport(w io.Writer, r *report.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "created\t%s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "k\t%d\n", r.Config.K)
	fmt.Fprintf(tw, "n_tries\t%d\n", r.Config.NTries)
	fmt.Fprintf(tw, "n_iter\t%d\n", r.Config.NIter)
	fmt.Fprintf(tw, "seed\t%d\n", r.Config.Seed)
	fmt.Fprintf(tw, "inertia\t%.6f\n", r.Inertia)
	fmt.Fprintf(tw, "restart\t%d (%d failed)\n", r.Restart, r.FailedRestarts)
	_ = tw.Flush()

	names := make([]string, 0, len(r.Evaluations))
	for name := range r.Evaluations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := r.Evaluations[name]
		fmt.Fprintf(w, "\n%s: %d points, purity %.4f, accuracy by %s\n", name, e.Points, e.Purity, r.AccuracyMode)
		fmt.Fprint(w, report.FormatAccuracy(e.Accuracy))
	}
}
