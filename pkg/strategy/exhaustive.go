package strategy

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/oisee/wmm-emulator/pkg/engine"
	"github.com/oisee/wmm-emulator/pkg/report"
)

// Exhaustive walks the full transition tree depth-first: for each enabled
// index, clone the configuration, apply the transition, then push the
// branch back onto a shared queue for some worker to pick up. Grounded on
// the teacher's search.WorkerPool (pkg/search/worker.go): a fixed pool of
// goroutines draining a flat queue of tasks, rather than one goroutine per
// tree node. Unlike WorkerPool's queue, this one grows while the pool
// drains it — every task a worker finishes can enqueue more tasks than it
// started with — so it is implemented directly on a mutex/condition
// variable instead of a fixed-capacity channel.
type Exhaustive struct {
	Workers int // 0 means runtime.NumCPU()

	Results *report.Table

	// Frontier holds the still-unexplored branches left over when Explore
	// returns early because its context was cancelled: one selection-index
	// path per branch, relative to the root passed to Explore. Populated
	// only after Explore returns; empty when the exploration ran to
	// completion.
	Frontier [][]int
}

// NewExhaustive builds an Exhaustive strategy with its own results table.
func NewExhaustive(workers int) *Exhaustive {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Exhaustive{Workers: workers, Results: report.NewTable()}
}

type exhaustiveTask struct {
	exec *engine.Executor
	path []int
}

// Explore drives the full transition tree to completion, recording every
// terminal configuration it reaches into e.Results. With no frontier given
// it starts a fresh walk from root. Given one or more frontier paths (as
// saved in a Checkpoint.Frontier from a previous, interrupted run) it
// instead replays each path against root to reconstruct that branch's
// Executor and resumes the walk from there, without redoing any subtree a
// previous run already finished.
//
// If ctx is cancelled before the walk completes, Explore stops dispatching
// new work, waits for in-flight branches to finish (each a few Clone/Select
// calls, never blocking), and returns ctx.Err() with e.Frontier set to the
// exact set of branches left unexplored.
func (e *Exhaustive) Explore(ctx context.Context, root *engine.Executor, cellCount, threadCount, registerCount int, frontier ...[]int) error {
	queue := newTaskQueue()
	if len(frontier) == 0 {
		queue.push(exhaustiveTask{exec: root})
	} else {
		for _, path := range frontier {
			exec, err := replay(root, path)
			if err != nil {
				return fmt.Errorf("strategy: replaying checkpointed path %v: %w", path, err)
			}
			queue.push(exhaustiveTask{exec: exec, path: append([]int(nil), path...)})
		}
	}

	innerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	stopWatcher := make(chan struct{})
	defer close(stopWatcher)
	go func() {
		select {
		case <-innerCtx.Done():
			queue.wake()
		case <-stopWatcher:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < e.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				t, ok := queue.pop(innerCtx)
				if !ok {
					return
				}
				e.process(t, queue, cellCount, threadCount, registerCount, fail)
				queue.done()
			}
		}()
	}
	wg.Wait()

	e.Frontier = queue.remaining()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (e *Exhaustive) process(t exhaustiveTask, queue *taskQueue, cellCount, threadCount, registerCount int, fail func(error)) {
	if t.exec.IsDone() {
		term := report.Terminal{
			Memory: t.exec.Configuration().MemorySnapshot(cellCount),
			Path:   append([]int(nil), t.path...),
		}
		for tid := 0; tid < threadCount; tid++ {
			term.Registers = append(term.Registers, t.exec.Configuration().RegisterSnapshot(tid, registerCount))
		}
		e.Results.Add(term)
		return
	}

	threads := t.exec.EnabledThreadSteps()
	props := t.exec.EnabledPropagations()
	total := len(threads) + len(props)

	for i := 0; i < total; i++ {
		branch := t.exec.Clone()
		if err := branch.Select(i, threads, props); err != nil {
			fail(fmt.Errorf("strategy: exhaustive branch at path %v index %d: %w", t.path, i, err))
			return
		}
		queue.push(exhaustiveTask{exec: branch, path: append(append([]int(nil), t.path...), i)})
	}
}

// replay reconstructs the Executor a path of selection indices leads to,
// starting from root. Deterministic because EnabledThreadSteps/
// EnabledPropagations enumerate in a fixed order for a given configuration.
func replay(root *engine.Executor, path []int) (*engine.Executor, error) {
	exec := root.Clone()
	for _, index := range path {
		threads := exec.EnabledThreadSteps()
		props := exec.EnabledPropagations()
		if err := exec.Select(index, threads, props); err != nil {
			return nil, fmt.Errorf("strategy: replay selection %d: %w", index, err)
		}
	}
	return exec, nil
}

// taskQueue is an unbounded LIFO queue of exhaustiveTasks shared by a fixed
// pool of workers. pending counts tasks that exist but have not finished
// processing — either sitting in items or currently being worked on — so a
// worker can tell "temporarily empty, more is coming" from "nothing left,
// ever" without a separate shutdown signal.
type taskQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []exhaustiveTask
	pending int
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *taskQueue) push(t exhaustiveTask) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.pending++
	q.cond.Signal()
	q.mu.Unlock()
}

// pop blocks until a task is available, the queue is exhausted (pending
// reaches zero with nothing left to hand out), or ctx is cancelled.
func (q *taskQueue) pop(ctx context.Context) (exhaustiveTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if ctx.Err() != nil {
			return exhaustiveTask{}, false
		}
		if n := len(q.items); n > 0 {
			t := q.items[n-1]
			q.items = q.items[:n-1]
			return t, true
		}
		if q.pending == 0 {
			return exhaustiveTask{}, false
		}
		q.cond.Wait()
	}
}

// done marks one previously popped task as fully processed.
func (q *taskQueue) done() {
	q.mu.Lock()
	q.pending--
	if q.pending == 0 {
		q.cond.Broadcast()
	}
	q.mu.Unlock()
}

// wake rouses every goroutine blocked in pop, used to make a context
// cancellation take effect immediately instead of waiting for the next
// push or done.
func (q *taskQueue) wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// remaining reports the path of every task still sitting in the queue,
// unpopped. Only meaningful once every worker has stopped calling pop.
func (q *taskQueue) remaining() [][]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	paths := make([][]int, len(q.items))
	for i, t := range q.items {
		paths[i] = t.path
	}
	return paths
}
