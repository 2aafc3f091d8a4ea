package restart

import (
	"errors"

	"github.com/hupe1980/kclust/model"
)

// ErrNoResults is returned by Select when there is no successful restart.
var ErrNoResults = errors.New("no successful restarts")

// Select returns the result with the strictly smallest inertia. Nil entries
// (failed restarts) are skipped; on exact ties the earliest entry wins.
func Select(results []*model.RestartResult) (*model.RestartResult, error) {
	var best *model.RestartResult
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil || r.Inertia < best.Inertia {
			best = r
		}
	}
	if best == nil {
		return nil, ErrNoResults
	}
	return best, nil
}
