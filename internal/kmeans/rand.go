package kmeans

import "math/rand/v2"

// NewSource returns the random stream for one restart.
// Distinct restart indices yield independent PCG streams under the same seed.
func NewSource(seed int64, restart int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(restart)))
}
