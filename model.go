package kclust

import (
	"fmt"

	"github.com/hupe1980/kclust/consensus"
	"github.com/hupe1980/kclust/internal/kmeans"
	"github.com/hupe1980/kclust/model"
)

// Model is a trained set of centroids.
type Model struct {
	cfg       Config
	centroids *model.CentroidSet
	seeded    *model.CentroidSet
	inertia   float64
	restart   int
	consensus *consensus.Consensus
	failures  []error
	mode      consensus.AccuracyMode
	classes   int
	fixed     bool
}

// NewModel wraps existing centroids, e.g. ones loaded from a report, so they
// can be used for prediction and evaluation. Only WithAccuracyMode,
// WithLabelClasses and WithMinLabelClasses are honoured.
func NewModel(centroids *model.CentroidSet, inertia float64, optFns ...Option) *Model {
	o := applyOptions(optFns)
	return &Model{
		cfg:       Config{K: centroids.Len()},
		centroids: centroids.Clone(),
		inertia:   inertia,
		mode:      o.accuracyMode,
		classes:   o.classes,
		fixed:     o.classesFixed,
	}
}

// Config returns the configuration the model was trained with.
func (m *Model) Config() Config { return m.cfg }

// K returns the number of centroids.
func (m *Model) K() int { return m.centroids.Len() }

// Dim returns the feature dimension.
func (m *Model) Dim() int { return m.centroids.Dim() }

// Centroids returns a copy of the final centroids.
func (m *Model) Centroids() *model.CentroidSet { return m.centroids.Clone() }

// Seeded returns a copy of the winning restart's seeded centroids, or nil for
// a model built with NewModel.
func (m *Model) Seeded() *model.CentroidSet {
	if m.seeded == nil {
		return nil
	}
	return m.seeded.Clone()
}

// Inertia returns the winning restart's inertia.
func (m *Model) Inertia() float64 { return m.inertia }

// Restart returns the index of the winning restart.
func (m *Model) Restart() int { return m.restart }

// Failures returns one *RestartError per restart that failed during training.
func (m *Model) Failures() []error { return m.failures }

// Consensus returns the training-set label consensus, or nil when the model
// was fitted without labels.
func (m *Model) Consensus() *consensus.Consensus { return m.consensus }

// Classes returns the label class count: the training count for a fitted
// model, or the configured one.
func (m *Model) Classes() int { return m.classes }

// ClassesFixed reports whether the class count was set with WithLabelClasses.
func (m *Model) ClassesFixed() bool { return m.fixed }

// AccuracyMode returns the row layout used by Accuracy.
func (m *Model) AccuracyMode() consensus.AccuracyMode { return m.mode }

// Predict returns the index of the centroid nearest to vec.
func (m *Model) Predict(vec []float32) (int, error) {
	if len(vec) != m.centroids.Dim() {
		return 0, &ErrDimensionMismatch{Expected: m.centroids.Dim(), Actual: len(vec)}
	}
	j, _ := kmeans.Nearest(vec, m.centroids)
	return j, nil
}

// Assign returns the nearest centroid of every row of fm.
func (m *Model) Assign(fm *model.FeatureMatrix) (model.Assignment, error) {
	if fm.Dim() != m.centroids.Dim() {
		return nil, &ErrDimensionMismatch{Expected: m.centroids.Dim(), Actual: fm.Dim()}
	}
	return kmeans.Assign(fm, m.centroids, nil), nil
}

// Evaluate builds the label consensus of a held-out matrix against the trained
// centroids. The matrix has at least the training class count; labels the
// training set never had widen it unless the count was fixed with
// WithLabelClasses.
func (m *Model) Evaluate(fm *model.FeatureMatrix, labels []int) (*consensus.Consensus, error) {
	if fm.Dim() != m.centroids.Dim() {
		return nil, &ErrDimensionMismatch{Expected: m.centroids.Dim(), Actual: fm.Dim()}
	}
	c, err := consensus.Build(fm, m.centroids, labels, m.classesFor(labels))
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", translateError(err))
	}
	return c, nil
}

func (m *Model) classesFor(labels []int) int {
	if m.fixed {
		return m.classes
	}
	classes := m.classes
	for _, l := range labels {
		classes = max(classes, l+1)
	}
	return classes
}

// Histograms returns the training-set label histogram of every cluster.
func (m *Model) Histograms() ([]consensus.LabelHistogram, error) {
	if m.consensus == nil {
		return nil, ErrNoConsensus
	}
	return m.consensus.Histograms(), nil
}

// Accuracy returns the training-set accuracy matrix in the model's mode.
func (m *Model) Accuracy() ([][]float64, error) {
	if m.consensus == nil {
		return nil, ErrNoConsensus
	}
	return m.consensus.Accuracy(m.mode), nil
}
