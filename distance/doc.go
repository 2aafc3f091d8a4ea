// Package distance provides the vector distance calculations used by the
// clustering engine.
//
// # Supported Metrics
//
//   - MetricMeanSquared: squared Euclidean distance divided by the dimension (default)
//   - MetricL2: squared Euclidean distance
//
// Accumulation is done in float64 so results are identical across runs and
// platforms for the same inputs.
//
// # Usage
//
//	d := distance.MeanSquared(a, b)
//	fn, _ := distance.Provider(distance.MetricMeanSquared)
package distance
