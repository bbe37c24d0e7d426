package cascade

import (
	"image"
	"sync"
)

// CascadeFile names a classifier file to load and the tag to report its
// detections under.
type CascadeFile struct {
	Path string
	Tag  Tag
}

// Pool is a simple pool of initialised Detection instances so multiple
// goroutines can run detection on different frames concurrently
type Pool struct {
	// pool of detection instances
	detections chan *Detection
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new detection pool.  Every instance loads the same
// classifier files and is initialised for the same frame size and
// configuration.
func NewPool(size int, files []CascadeFile, imageSize image.Point,
	cfg InitConfig) (*Pool, error) {

	p := &Pool{
		detections: make(chan *Detection, size),
		size:       size,
	}

	for i := 0; i < size; i++ {
		det := NewDetection()

		for _, f := range files {
			if err := det.Load(f.Path, f.Tag); err != nil {
				// close any instances that may have been created before
				// receiving the error
				p.Close()
				return nil, err
			}
		}

		if err := det.Init(imageSize, cfg); err != nil {
			// the failed instance holds a worker pool of its own and is
			// not yet tracked by the channel
			det.Close()
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(det)
	}

	return p, nil
}

// Gets a detection instance from the pool
func (p *Pool) Get() *Detection {
	return <-p.detections
}

// Return a detection instance to the pool
func (p *Pool) Return(det *Detection) {
	select {
	case p.detections <- det:
	default:
		// pool is full or closed
	}
}

// Close the pool and all detection instances in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.detections)

		// close all detection instances
		for next := range p.detections {
			next.Close()
		}
	})
}
