package render

import (
	"image"
	"runtime"
	"sync"

	"github.com/pthm-cable/lic/lic"
	"github.com/pthm-cable/lic/raster"
)

// tileJob is one rectangle for a worker to fill.
type tileJob struct {
	kernel *lic.Kernel
	dst    *raster.Image
	rect   image.Rectangle
	abort  func() bool
}

// tileDone reports how many rows of a tile were completed.
type tileDone struct {
	rect image.Rectangle
	rows int
}

// pool holds persistent tile workers, reused across renders.
type pool struct {
	numWorkers int

	workChan chan tileJob   // sends work to workers
	doneChan chan tileDone  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newPool(numWorkers int) *pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &pool{numWorkers: numWorkers}
}

// start launches the worker goroutines if they are not running yet.
func (p *pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan tileJob, p.numWorkers)
	p.doneChan = make(chan tileDone, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *pool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case job, ok := <-p.workChan:
			if !ok {
				return
			}
			rows := job.kernel.ProcessTile(job.dst, job.rect, job.abort)
			p.doneChan <- tileDone{rect: job.rect, rows: rows}
		}
	}
}

// run dispatches every tile and blocks until all of them report back.
func (p *pool) run(k *lic.Kernel, dst *raster.Image, tiles []image.Rectangle, abort func() bool) []tileDone {
	p.start()

	go func() {
		for _, t := range tiles {
			p.workChan <- tileJob{kernel: k, dst: dst, rect: t, abort: abort}
		}
	}()

	done := make([]tileDone, 0, len(tiles))
	for range tiles {
		done = append(done, <-p.doneChan)
	}
	return done
}
