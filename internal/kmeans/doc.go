// Package kmeans implements the single-restart k-means pipeline:
// k-means++ seeding followed by a fixed number of Lloyd iterations.
//
// Every random decision (first centroid, weighted seeding draws, empty-cluster
// reseeding) is taken from a *rand.Rand passed in by the caller, so a restart
// is fully reproducible from its (seed, restart) pair. Nothing in this package
// touches global random state.
package kmeans
