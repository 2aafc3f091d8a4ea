// Package consensus associates clusters with ground-truth labels.
//
// Given final centroids, the feature matrix and one label per point, Build
// assigns every point to its nearest centroid and records, per cluster, the
// histogram of labels and the set of member points (a roaring bitmap of point
// indices). The result answers two questions:
//
//   - which label does a cluster stand for (its plurality label), and
//   - how pure is it (the accuracy matrix, cluster × label, in percent).
//
// Two accuracy layouts are available. AccuracyByCluster writes one row per
// cluster. AccuracyByPluralityLabel writes each cluster into the row of its
// plurality label. Clusters sharing a plurality label write into the same row:
// the later cluster overwrites the columns it has labels for and earlier
// values survive in the others. Rows of labels no cluster wins stay zero.
package consensus
