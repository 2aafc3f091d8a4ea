package restart

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kclust/internal/kmeans"
	"github.com/hupe1980/kclust/model"
	"github.com/hupe1980/kclust/resource"
)

// Error records the failure of a single restart.
type Error struct {
	Restart int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("restart %d: %v", e.Restart, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Task is the immutable description of one restart.
type Task struct {
	Matrix  *model.FeatureMatrix
	K       int
	NIter   int
	Seed    int64
	Restart int
}

// ObserveFunc is called from the worker goroutine once a restart finishes.
// Exactly one of res and err is non-nil. Implementations must be safe for
// concurrent use.
type ObserveFunc func(restart int, res *model.RestartResult, elapsed time.Duration, err error)

// Outcome holds the per-restart results of a Run, indexed by restart.
type Outcome struct {
	// Results[i] is nil when restart i failed.
	Results []*model.RestartResult
	// Errors holds one *Error per failed restart, in restart order.
	Errors []error
}

// Succeeded returns the successful results in restart order.
func (o *Outcome) Succeeded() []*model.RestartResult {
	out := make([]*model.RestartResult, 0, len(o.Results))
	for _, r := range o.Results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Driver fans restarts out to a pool of workers.
type Driver struct {
	workers int
	rc      *resource.Controller
	observe ObserveFunc
}

// Option configures a Driver.
type Option func(*Driver)

// WithWorkers sets the number of worker goroutines.
// Values <= 0 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(d *Driver) {
		d.workers = n
	}
}

// WithResourceController makes every restart hold a worker slot and reserve
// its working memory on rc while it runs.
func WithResourceController(rc *resource.Controller) Option {
	return func(d *Driver) {
		d.rc = rc
	}
}

// WithObserver installs a per-restart callback.
func WithObserver(fn ObserveFunc) Option {
	return func(d *Driver) {
		d.observe = fn
	}
}

// NewDriver creates a Driver.
func NewDriver(optFns ...Option) *Driver {
	d := &Driver{}
	for _, fn := range optFns {
		if fn != nil {
			fn(d)
		}
	}
	if d.workers <= 0 {
		d.workers = runtime.GOMAXPROCS(0)
	}
	return d
}

type outcome struct {
	restart int
	res     *model.RestartResult
	err     error
}

// Run executes nTries restarts of (k, nIter) on m and blocks until all of them
// have finished. Restart i draws from kmeans.NewSource(seed, i).
//
// A failing restart never aborts the others; its error is collected in the
// Outcome. Run itself only fails if the worker pool cannot be set up.
func (d *Driver) Run(ctx context.Context, m *model.FeatureMatrix, k, nIter, nTries int, seed int64) (*Outcome, error) {
	workers := min(d.workers, nTries)

	tasks := make(chan Task, nTries)
	for i := 0; i < nTries; i++ {
		tasks <- Task{Matrix: m, K: k, NIter: nIter, Seed: seed, Restart: i}
	}
	close(tasks)

	results := make(chan outcome, nTries)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for task := range tasks {
				start := time.Now()
				res, err := d.runTask(ctx, task)
				if d.observe != nil {
					d.observe(task.Restart, res, time.Since(start), err)
				}
				results <- outcome{restart: task.Restart, res: res, err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	out := &Outcome{Results: make([]*model.RestartResult, nTries)}
	errs := make([]error, nTries)
	for o := range results {
		out.Results[o.restart] = o.res
		errs[o.restart] = o.err
	}
	for _, err := range errs {
		if err != nil {
			out.Errors = append(out.Errors, err)
		}
	}
	return out, nil
}

// runTask runs one restart, converting panics and resource failures into an
// *Error so a broken restart can never be mistaken for a result.
func (d *Driver) runTask(ctx context.Context, task Task) (res *model.RestartResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &Error{Restart: task.Restart, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := d.rc.AcquireWorker(ctx); err != nil {
		return nil, &Error{Restart: task.Restart, Err: err}
	}
	defer d.rc.ReleaseWorker()

	mem := WorkingSetBytes(task.Matrix.Len(), task.Matrix.Dim(), task.K)
	if err := d.rc.AcquireMemory(mem); err != nil {
		return nil, &Error{Restart: task.Restart, Err: err}
	}
	defer d.rc.ReleaseMemory(mem)

	res, err = kmeans.Run(ctx, task.Matrix, task.K, task.NIter, kmeans.NewSource(task.Seed, task.Restart))
	if err != nil {
		return nil, &Error{Restart: task.Restart, Err: err}
	}
	res.Restart = task.Restart
	return res, nil
}

// WorkingSetBytes estimates the memory one restart allocates: two centroid
// sets (current and seeded), the float64 update sums, the assignment and the
// seeding distance buffers.
func WorkingSetBytes(n, dim, k int) int64 {
	centroids := int64(2 * k * dim * 4)
	sums := int64(k * dim * 8)
	perPoint := int64(n * (8 + 8 + 8))
	return centroids + sums + perPoint
}
