package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/kclust"
	"github.com/hupe1980/kclust/consensus"
	"github.com/hupe1980/kclust/model"
)

// FormatVersion is the version written into new reports.
const FormatVersion = 1

// ErrUnsupportedVersion is returned by Load for reports from a newer format.
var ErrUnsupportedVersion = errors.New("report: unsupported format version")

// Evaluation is the label consensus of one labelled matrix.
type Evaluation struct {
	Points     int                        `json:"points"`
	Purity     float64                    `json:"purity"`
	Histograms []consensus.LabelHistogram `json:"histograms"`
	Accuracy   [][]float64                `json:"accuracy"`
}

// Report is the persisted summary of a training run.
type Report struct {
	Version        int           `json:"version"`
	RunID          uuid.UUID     `json:"run_id"`
	CreatedAt      time.Time     `json:"created_at"`
	Config         kclust.Config `json:"config"`
	Inertia        float64       `json:"inertia"`
	Restart        int           `json:"restart"`
	FailedRestarts int           `json:"failed_restarts"`
	Dimension      int           `json:"dimension"`
	Centroids      [][]float32   `json:"centroids"`
	Seeded         [][]float32   `json:"seeded,omitempty"`
	AccuracyMode   string        `json:"accuracy_mode"`
	Classes        int           `json:"classes,omitempty"`
	FixedClasses   bool          `json:"fixed_classes,omitempty"`
	// Evaluations is keyed by data set name, e.g. "train" or "test".
	Evaluations map[string]*Evaluation `json:"evaluations,omitempty"`
}

// New builds a report for a trained model. The training consensus, if any,
// is recorded as the "train" evaluation.
func New(mdl *kclust.Model) *Report {
	r := &Report{
		Version:        FormatVersion,
		RunID:          uuid.New(),
		CreatedAt:      time.Now().UTC(),
		Config:         mdl.Config(),
		Inertia:        mdl.Inertia(),
		Restart:        mdl.Restart(),
		FailedRestarts: len(mdl.Failures()),
		Dimension:      mdl.Dim(),
		Centroids:      mdl.Centroids().Rows(),
		AccuracyMode:   mdl.AccuracyMode().String(),
		Classes:        mdl.Classes(),
		FixedClasses:   mdl.ClassesFixed(),
	}
	if seeded := mdl.Seeded(); seeded != nil {
		r.Seeded = seeded.Rows()
	}
	if c := mdl.Consensus(); c != nil {
		r.AddEvaluation("train", c)
	}
	return r
}

// AddEvaluation records c under name using the report's accuracy mode. When c
// has more classes than earlier evaluations, their accuracy rows are padded
// with zero columns so all tables share one width.
func (r *Report) AddEvaluation(name string, c *consensus.Consensus) {
	mode, err := consensus.ParseAccuracyMode(r.AccuracyMode)
	if err != nil {
		mode = consensus.AccuracyByCluster
	}
	if r.Evaluations == nil {
		r.Evaluations = make(map[string]*Evaluation)
	}
	r.Classes = max(r.Classes, c.Classes())
	r.Evaluations[name] = &Evaluation{
		Points:     len(c.Assignment()),
		Purity:     c.Purity(),
		Histograms: c.Histograms(),
		Accuracy:   c.Accuracy(mode),
	}
	for _, e := range r.Evaluations {
		for i, row := range e.Accuracy {
			if n := r.Classes - len(row); n > 0 {
				e.Accuracy[i] = append(row, make([]float64, n)...)
			}
		}
	}
}

// Model rebuilds a model from the stored centroids. The report's accuracy
// mode and class count are applied unless optFns override them.
func (r *Report) Model(optFns ...kclust.Option) (*kclust.Model, error) {
	centroids, err := model.CentroidSetFromRows(r.Centroids)
	if err != nil {
		return nil, fmt.Errorf("report: centroids: %w", err)
	}
	mode, err := consensus.ParseAccuracyMode(r.AccuracyMode)
	if err != nil {
		return nil, err
	}
	classes := kclust.WithMinLabelClasses(r.Classes)
	if r.FixedClasses {
		classes = kclust.WithLabelClasses(r.Classes)
	}
	opts := append([]kclust.Option{kclust.WithAccuracyMode(mode), classes}, optFns...)
	return kclust.NewModel(centroids, r.Inertia, opts...), nil
}
