// Package kclust trains k-means clustering models on dense float32 feature
// matrices.
//
// Training seeds every restart with k-means++ (weights proportional to the
// squared mean squared distance to the nearest chosen centroid), then runs a
// fixed number of Lloyd assign/update rounds. Restarts run in parallel, each
// with its own random stream derived from (Seed, restart index), and the
// restart with the strictly lowest inertia wins. Ties go to the lowest
// restart index, so a fixed seed reproduces the same model bit for bit.
//
// # Quick Start
//
//	m, _ := model.NewFeatureMatrix(rows)
//	tr, _ := kclust.New(kclust.Config{K: 10, NTries: 4, NIter: 20, Seed: 1})
//	mdl, _ := tr.Fit(ctx, m, labels)
//	fmt.Println(mdl.Inertia())
//
// # Labels
//
// When labels are passed to Fit the model carries a label consensus: one
// histogram of ground-truth labels per cluster and an accuracy matrix. Two
// layouts exist, see consensus.AccuracyMode.
//
// # Errors
//
// Bad parameters and inputs that cannot be trained (k < 1, n_tries < 1,
// n_iter < 0, fewer points than clusters) fail with ErrInvalidConfiguration
// before any restart starts. Empty clusters and degenerate seeding are
// recovered inside a restart. A restart that fails anyway is excluded from
// selection; if all of them fail, Fit returns ErrNoValidRestarts.
//
// # Observability
//
// WithLogger installs a slog based Logger, WithMetricsCollector a
// MetricsCollector (see metrics/prometheus for a Prometheus implementation).
package kclust
