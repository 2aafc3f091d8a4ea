// Package model defines the core data types shared by the clustering engine.
//
// # Data Types
//
//   - FeatureMatrix: N read-only feature vectors of identical dimension D
//   - CentroidSet: k mutable centroids of dimension D, owned by one restart
//   - Assignment: point index -> cluster index
//   - RestartResult: outcome of one independent restart
//
// Vectors are stored in a single flattened backing slice (row-major), the same
// layout the engine iterates over.
package model
