package game

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/pthm-cable/avoid/fuzzy"
)

// parallelThreshold is the minimum fleet size to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 8

// workChunk represents a range of robots for a worker to step.
type workChunk struct {
	ctx        context.Context
	start, end int
}

// parallelState holds the persistent worker pool for control ticks.
type parallelState struct {
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{numWorkers: workers}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk.ctx, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// stepControllers runs one control tick for every robot. Each robot only
// reads the shared view and writes its own port, so the outcome does not
// depend on the worker count.
func (g *Game) stepControllers(ctx context.Context) {
	n := len(g.robots)
	if n == 0 {
		return
	}
	if n < parallelThreshold || g.parallel.numWorkers == 1 {
		g.computeChunk(ctx, 0, n)
		return
	}
	g.computeParallel(ctx, n)
}

// computeParallel dispatches work to the worker pool.
func (g *Game) computeParallel(ctx context.Context, n int) {
	// Ensure workers are running
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		g.parallel.workChan <- workChunk{ctx: ctx, start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-g.parallel.doneChan
	}
}

// computeChunk steps the control loops of robots [i0, i1).
func (g *Game) computeChunk(ctx context.Context, i0, i1 int) {
	for i := i0; i < i1; i++ {
		r := g.robots[i]
		if _, err := r.loop.Step(ctx); err != nil && !errors.Is(err, fuzzy.ErrNoRuleFired) && ctx.Err() == nil {
			g.logger.Error("control tick failed", "robot", r.id, "error", err)
		}
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
