package cascade

import (
	"image"
	"runtime"
	"sync"

	"github.com/detkit/go-cascade/classifier"
)

// scanTask is one row band of a classifier scan.  Bands of one batch write
// to disjoint rows of the shared destination mask, so no synchronization is
// needed on the buffer itself.
type scanTask struct {
	engine classifier.Engine
	mask   *image.Gray
	rect   image.Rectangle
	dst    *image.Gray
}

// workerPool is a fixed set of long lived workers, each draining its own
// task channel.  The detection driver enqueues one band per worker and
// blocks on wait until the batch has fully drained; batches never overlap.
type workerPool struct {
	tasks []chan scanTask
	wg    sync.WaitGroup
}

// newWorkerPool starts n workers.
func newWorkerPool(n int) *workerPool {

	p := &workerPool{
		tasks: make([]chan scanTask, n),
	}

	for i := range p.tasks {
		ch := make(chan scanTask, 4)
		p.tasks[i] = ch

		go func() {
			for t := range ch {
				t.engine.ScanRowBand(t.mask, t.rect, t.dst)
				p.wg.Done()
			}
		}()
	}

	return p
}

// size returns the worker count.
func (p *workerPool) size() int {
	return len(p.tasks)
}

// add enqueues a task on worker i.
func (p *workerPool) add(i int, t scanTask) {
	p.wg.Add(1)
	p.tasks[i] <- t
}

// wait blocks until every task added since the previous wait has been
// executed.  It must be called once per batch of add calls before the
// destination mask is read.
func (p *workerPool) wait() {
	p.wg.Wait()
}

// close shuts the workers down.  No add or wait may follow.
func (p *workerPool) close() {
	for _, ch := range p.tasks {
		close(ch)
	}
}

// initWorkers builds the worker pool.  The requested count is clamped to
// [1, NumCPU], with non-positive or out of range values selecting one
// worker per CPU.  A resolved count of 1 leaves the pool nil and scans run
// on the calling goroutine.
func (d *Detection) initWorkers(threads int) {

	if d.pool != nil {
		d.pool.close()
		d.pool = nil
	}

	maxThreads := runtime.NumCPU()
	if threads <= 0 || threads > maxThreads {
		threads = maxThreads
	}

	if threads > 1 {
		d.pool = newWorkerPool(threads)
	}
}
