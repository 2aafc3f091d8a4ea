package consensus

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kclust/internal/kmeans"
	"github.com/hupe1980/kclust/model"
)

var (
	// ErrLabelCount is returned when the number of labels differs from the
	// number of points.
	ErrLabelCount = errors.New("consensus: label count does not match point count")
	// ErrNegativeLabel is returned for labels below zero.
	ErrNegativeLabel = errors.New("consensus: negative label")
	// ErrLabelOutOfRange is returned for labels >= the configured class count.
	ErrLabelOutOfRange = errors.New("consensus: label out of range")
)

// LabelHistogram maps a ground-truth label to the number of points in one
// cluster bearing it.
type LabelHistogram map[int]int

// Total returns the number of points counted in h.
func (h LabelHistogram) Total() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// Plurality returns the most frequent label; ties go to the smallest label,
// regardless of the order in which points were added. ok is false for an
// empty histogram.
func (h LabelHistogram) Plurality() (label int, ok bool) {
	best := -1
	for _, l := range slices.Sorted(maps.Keys(h)) {
		if best < 0 || h[l] > h[best] {
			best = l
		}
	}
	return best, best >= 0
}

// AccuracyMode selects the row layout of the accuracy matrix.
type AccuracyMode int

const (
	// AccuracyByCluster writes cluster j into row j.
	AccuracyByCluster AccuracyMode = iota
	// AccuracyByPluralityLabel writes each cluster into the row of its
	// plurality label. Labels >= k have no row and are skipped.
	AccuracyByPluralityLabel
)

func (m AccuracyMode) String() string {
	switch m {
	case AccuracyByCluster:
		return "cluster"
	case AccuracyByPluralityLabel:
		return "plurality"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseAccuracyMode parses the String form of an AccuracyMode.
func ParseAccuracyMode(s string) (AccuracyMode, error) {
	switch s {
	case "", "cluster":
		return AccuracyByCluster, nil
	case "plurality":
		return AccuracyByPluralityLabel, nil
	default:
		return 0, fmt.Errorf("consensus: unknown accuracy mode %q", s)
	}
}

// Consensus is the label view of a clustering. It is read-only once built.
type Consensus struct {
	k          int
	classes    int
	assignment model.Assignment
	histograms []LabelHistogram
	members    []*roaring.Bitmap
}

// Build assigns every row of m to its nearest centroid and aggregates labels
// per cluster. classes <= 0 derives the class count as max(label)+1.
func Build(m *model.FeatureMatrix, centroids *model.CentroidSet, labels []int, classes int) (*Consensus, error) {
	if len(labels) != m.Len() {
		return nil, fmt.Errorf("%w: %d points, %d labels", ErrLabelCount, m.Len(), len(labels))
	}
	return FromAssignment(kmeans.Assign(m, centroids, nil), labels, centroids.Len(), classes)
}

// FromAssignment aggregates labels for an existing assignment into k clusters.
func FromAssignment(assignment model.Assignment, labels []int, k, classes int) (*Consensus, error) {
	if len(labels) != len(assignment) {
		return nil, fmt.Errorf("%w: %d points, %d labels", ErrLabelCount, len(assignment), len(labels))
	}

	maxLabel := -1
	for i, l := range labels {
		if l < 0 {
			return nil, fmt.Errorf("%w: point %d has label %d", ErrNegativeLabel, i, l)
		}
		maxLabel = max(maxLabel, l)
	}
	if classes <= 0 {
		classes = maxLabel + 1
	} else if maxLabel >= classes {
		return nil, fmt.Errorf("%w: label %d with %d classes", ErrLabelOutOfRange, maxLabel, classes)
	}

	c := &Consensus{
		k:          k,
		classes:    classes,
		assignment: slices.Clone(assignment),
		histograms: make([]LabelHistogram, k),
		members:    make([]*roaring.Bitmap, k),
	}
	for j := 0; j < k; j++ {
		c.histograms[j] = make(LabelHistogram)
		c.members[j] = roaring.New()
	}
	for i, cluster := range assignment {
		c.histograms[cluster][labels[i]]++
		c.members[cluster].Add(uint32(i))
	}
	for _, b := range c.members {
		b.RunOptimize()
	}
	return c, nil
}

// K returns the number of clusters.
func (c *Consensus) K() int { return c.k }

// Classes returns the number of label classes (matrix columns).
func (c *Consensus) Classes() int { return c.classes }

// Assignment returns a copy of the point -> cluster assignment.
func (c *Consensus) Assignment() model.Assignment { return slices.Clone(c.assignment) }

// Histogram returns a copy of the label histogram of cluster j.
func (c *Consensus) Histogram(j int) LabelHistogram { return maps.Clone(c.histograms[j]) }

// Histograms returns copies of all label histograms in cluster order.
func (c *Consensus) Histograms() []LabelHistogram {
	out := make([]LabelHistogram, c.k)
	for j := range out {
		out[j] = c.Histogram(j)
	}
	return out
}

// Members returns a copy of the set of point indices assigned to cluster j.
func (c *Consensus) Members(j int) *roaring.Bitmap { return c.members[j].Clone() }

// Size returns the number of points in cluster j.
func (c *Consensus) Size(j int) int { return int(c.members[j].GetCardinality()) }

// Plurality returns the plurality label of cluster j.
func (c *Consensus) Plurality(j int) (int, bool) { return c.histograms[j].Plurality() }

// Accuracy returns the k × classes matrix of label percentages.
// A cluster without points contributes an all-zero row.
func (c *Consensus) Accuracy(mode AccuracyMode) [][]float64 {
	acc := make([][]float64, c.k)
	for i := range acc {
		acc[i] = make([]float64, c.classes)
	}

	for j, h := range c.histograms {
		total := h.Total()
		if total == 0 {
			continue
		}

		row := j
		if mode == AccuracyByPluralityLabel {
			label, _ := h.Plurality()
			if label >= c.k {
				continue
			}
			row = label
		}

		for label, count := range h {
			acc[row][label] = 100 * float64(count) / float64(total)
		}
	}
	return acc
}

// Purity returns the fraction of points whose label equals the plurality
// label of their cluster (0 when there are no points).
func (c *Consensus) Purity() float64 {
	var hits, total int
	for _, h := range c.histograms {
		if label, ok := h.Plurality(); ok {
			hits += h[label]
		}
		total += h.Total()
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
