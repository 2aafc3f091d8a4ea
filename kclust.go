package kclust

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/hupe1980/kclust/consensus"
	"github.com/hupe1980/kclust/internal/restart"
	"github.com/hupe1980/kclust/model"
)

// Config holds the training parameters.
type Config struct {
	// K is the number of clusters (>= 1).
	K int `json:"k" yaml:"k"`
	// NTries is the number of independent restarts (>= 1).
	NTries int `json:"n_tries" yaml:"n_tries"`
	// NIter is the fixed number of assign/update rounds per restart (>= 0).
	// Zero keeps the seeded centroids as they are.
	NIter int `json:"n_iter" yaml:"n_iter"`
	// Seed makes training reproducible. Restart i draws from a stream derived
	// from (Seed, i).
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the configuration used by the CLI when nothing is set.
func DefaultConfig() Config {
	return Config{K: 10, NTries: 4, NIter: 20, Seed: 1}
}

// Validate checks the parameters that do not depend on the data.
func (c Config) Validate() error {
	switch {
	case c.K < 1:
		return &ConfigError{Field: "k", Value: c.K, Reason: "must be at least 1"}
	case c.NTries < 1:
		return &ConfigError{Field: "n_tries", Value: c.NTries, Reason: "must be at least 1"}
	case c.NIter < 0:
		return &ConfigError{Field: "n_iter", Value: c.NIter, Reason: "must not be negative"}
	}
	return nil
}

// Trainer runs k-means++ seeded Lloyd iterations over parallel restarts and
// keeps the restart with the lowest inertia.
type Trainer struct {
	cfg  Config
	opts options
}

// New creates a Trainer. It fails with ErrInvalidConfiguration if cfg is not
// valid.
func New(cfg Config, optFns ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{
		cfg:  cfg,
		opts: applyOptions(optFns),
	}, nil
}

// Config returns the training parameters.
func (t *Trainer) Config() Config { return t.cfg }

// Fit trains a model on m. When labels is non-nil it must hold one
// non-negative label per row; the returned model then carries a label
// consensus.
//
// Input problems are reported with ErrInvalidConfiguration before any restart
// starts. Failed restarts are skipped and exposed through Model.Failures; if
// all of them fail Fit returns an error wrapping ErrNoValidRestarts and every
// *RestartError.
func (t *Trainer) Fit(ctx context.Context, m *model.FeatureMatrix, labels []int) (mdl *Model, err error) {
	start := time.Now()
	defer func() {
		t.opts.metricsCollector.RecordTrain(t.cfg.K, t.cfg.NTries, time.Since(start), err)
	}()

	if err := t.checkInput(m, labels); err != nil {
		return nil, err
	}

	logger := t.opts.logger.WithK(t.cfg.K).WithDimension(m.Dim())

	workers := t.opts.maxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, t.cfg.NTries)
	logger.LogWorkingSet(ctx, workers, restart.WorkingSetBytes(m.Len(), m.Dim(), t.cfg.K))

	driver := restart.NewDriver(
		restart.WithWorkers(workers),
		restart.WithResourceController(t.opts.rc),
		restart.WithObserver(t.observer(ctx, logger)),
	)

	out, err := driver.Run(ctx, m, t.cfg.K, t.cfg.NIter, t.cfg.NTries, t.cfg.Seed)
	if err != nil {
		return nil, err
	}

	failures := make([]error, 0, len(out.Errors))
	for _, e := range out.Errors {
		failures = append(failures, translateError(e))
	}

	best, err := restart.Select(out.Results)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrNoValidRestarts, errors.Join(failures...))
		logger.LogTrain(ctx, t.cfg.NTries, len(failures), 0, time.Since(start), err)
		return nil, err
	}

	mdl = &Model{
		cfg:       t.cfg,
		centroids: best.Centroids,
		seeded:    best.Seeded,
		inertia:   best.Inertia,
		restart:   best.Restart,
		failures:  failures,
		mode:      t.opts.accuracyMode,
		classes:   t.opts.classes,
		fixed:     t.opts.classesFixed,
	}

	if labels != nil {
		c, err := consensus.Build(m, best.Centroids, labels, mdl.classesFor(labels))
		if err != nil {
			return nil, translateError(err)
		}
		mdl.consensus = c
		mdl.classes = c.Classes()
	}

	logger.LogTrain(ctx, t.cfg.NTries, len(failures), best.Inertia, time.Since(start), nil)
	return mdl, nil
}

func (t *Trainer) checkInput(m *model.FeatureMatrix, labels []int) error {
	if m == nil || m.Len() == 0 {
		return &ConfigError{Field: "matrix", Value: 0, Reason: "no points"}
	}
	if m.Len() < t.cfg.K {
		return &ConfigError{Field: "k", Value: t.cfg.K, Reason: fmt.Sprintf("exceeds the %d available points", m.Len())}
	}
	if labels == nil {
		return nil
	}
	if len(labels) != m.Len() {
		return fmt.Errorf("%w: %d points, %d labels", ErrLabelCount, m.Len(), len(labels))
	}
	for i, l := range labels {
		if l < 0 {
			return fmt.Errorf("%w: point %d has label %d", consensus.ErrNegativeLabel, i, l)
		}
		if t.opts.classesFixed && l >= t.opts.classes {
			return fmt.Errorf("%w: point %d has label %d with %d classes", consensus.ErrLabelOutOfRange, i, l, t.opts.classes)
		}
	}
	return nil
}

func (t *Trainer) observer(ctx context.Context, logger *Logger) restart.ObserveFunc {
	mc := t.opts.metricsCollector
	return func(idx int, res *model.RestartResult, elapsed time.Duration, err error) {
		if err != nil {
			err = translateError(err)
			logger.LogRestart(ctx, idx, 0, elapsed, err)
			mc.RecordRestart(idx, 0, elapsed, err)
			return
		}
		logger.LogRestart(ctx, idx, res.Inertia, elapsed, nil)
		mc.RecordRestart(idx, res.Inertia, elapsed, nil)
		for range res.DegenerateDraws {
			mc.RecordDegenerateSeeding(idx)
		}
		for range res.EmptyClusters {
			mc.RecordEmptyCluster(idx)
		}
	}
}
