package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ctwrap/internal/config"
	"ctwrap/internal/logging"
	"ctwrap/internal/sim"
)

// Status tracks one task through its lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// workUnit is one self-contained dispatch: the task ID and its fully
// resolved configuration. Nothing else crosses the worker boundary.
type workUnit struct {
	id  string
	cfg config.Map
}

// notice is the per-task completion report sent back to the coordinator.
// Failures travel on this channel too, so a failed task can never vanish
// silently from the run.
type notice struct {
	id     string
	worker int
	status Status
	err    error
}

// RunSerial runs the sorted task set in-process, one task at a time. The
// first error aborts the remaining tasks and propagates; the provenance
// record is only written after a fully successful pass.
func (h *Handler) RunSerial(ctx context.Context, factory sim.Factory) error {
	mod := factory()
	for _, id := range h.registry.Enumerate() {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg, err := h.registry.Configuration(id)
		if err != nil {
			return err
		}

		h.log.Info("processing task", "task", id)
		res, err := mod.Run(ctx, id, cfg)
		if err != nil {
			return fmt.Errorf("task %s: %w", id, err)
		}

		h.mu.Lock()
		err = h.save(id, res)
		h.mu.Unlock()
		if err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.saveMetadata()
}

// RunParallel fans the task set out to a pool of workers pulling from a
// shared queue. Every task configuration is resolved before dispatch, each
// worker builds its own module instance, and artifact writes happen one at
// a time under the handler lock, in completion order. On-disk group order
// is therefore nondeterministic; the set of groups is not.
//
// Task failures are confined to their task: the pool keeps draining the
// queue, and all failures are joined into the returned error. Provenance is
// written exactly once, by the coordinator, after all workers have joined.
func (h *Handler) RunParallel(ctx context.Context, factory sim.Factory, workers int) error {
	ids := h.registry.Enumerate()
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	queue := make(chan workUnit, len(ids))
	for _, id := range ids {
		cfg, err := h.registry.Configuration(id)
		if err != nil {
			return err
		}
		queue <- workUnit{id: id, cfg: cfg}
	}
	close(queue)

	notices := make(chan notice, len(ids))
	h.log.Info("running parallel sweep", "workers", workers, "tasks", len(ids))

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			h.worker(ctx, w, factory, queue, notices)
			return nil
		})
	}
	_ = g.Wait() // workers report per-task failures through notices
	close(notices)

	var errs []error
	for n := range notices {
		if n.status == StatusFailed {
			h.log.Error("task failed", "task", n.id, "worker", n.worker, "error", n.err)
			errs = append(errs, fmt.Errorf("task %s: %w", n.id, n.err))
		} else {
			h.log.Debug("task completed", "task", n.id, "worker", n.worker)
		}
	}

	h.mu.Lock()
	metaErr := h.saveMetadata()
	h.mu.Unlock()
	if metaErr != nil {
		errs = append(errs, metaErr)
	}
	return errors.Join(errs...)
}

// worker drains the shared queue until it is exhausted. Each worker holds
// its own module instance; only work units and notices cross the boundary.
func (h *Handler) worker(ctx context.Context, id int, factory sim.Factory, queue <-chan workUnit, notices chan<- notice) {
	log := logging.New("worker").With("worker", id)
	log.Debug("starting")

	mod := factory()
	for unit := range queue {
		if err := ctx.Err(); err != nil {
			notices <- notice{id: unit.id, worker: id, status: StatusFailed, err: err}
			continue
		}

		log.Info("processing task", "task", unit.id)
		res, err := mod.Run(ctx, unit.id, unit.cfg)
		if err != nil {
			notices <- notice{id: unit.id, worker: id, status: StatusFailed, err: err}
			continue
		}

		// Existence check and write form one critical section.
		h.mu.Lock()
		err = h.save(unit.id, res)
		h.mu.Unlock()

		st := StatusDone
		if err != nil {
			st = StatusFailed
		}
		notices <- notice{id: unit.id, worker: id, status: st, err: err}
	}

	log.Debug("terminating")
}
