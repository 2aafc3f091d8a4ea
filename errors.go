package kclust

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kclust/consensus"
	"github.com/hupe1980/kclust/internal/kmeans"
	"github.com/hupe1980/kclust/internal/restart"
	"github.com/hupe1980/kclust/model"
)

var (
	// ErrInvalidConfiguration is returned when the configuration or the input
	// shape cannot be trained. It is raised before any restart is dispatched.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoValidRestarts is returned when every restart failed.
	ErrNoValidRestarts = errors.New("no valid restarts")

	// ErrLabelCount is returned when the label array does not have one entry
	// per point.
	ErrLabelCount = consensus.ErrLabelCount

	// ErrNoConsensus is returned by Model methods that need a label consensus
	// when the model was fitted without labels.
	ErrNoConsensus = errors.New("model has no label consensus")

	// ErrNonFinite is the cause of a restart whose distances became NaN or Inf.
	ErrNonFinite = kmeans.ErrNonFinite
)

// ConfigError identifies the configuration field that was rejected.
//
// errors.Is(err, ErrInvalidConfiguration) reports true for every ConfigError.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }

// ErrDimensionMismatch indicates a matrix whose dimension differs from the
// dimension the model was trained on.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// RestartError reports the failure of a single restart.
//
// The original underlying error can be accessed via errors.Unwrap.
type RestartError struct {
	Restart int
	cause   error
}

func (e *RestartError) Error() string {
	return fmt.Sprintf("restart %d failed: %v", e.Restart, e.cause)
}

func (e *RestartError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var re *restart.Error
	if errors.As(err, &re) {
		return &RestartError{Restart: re.Restart, cause: re.Err}
	}

	var dm *model.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	if errors.Is(err, kmeans.ErrNotEnoughPoints) || errors.Is(err, kmeans.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return err
}
