package detect

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrPoolClosed is returned by Pool.Detect after Close
var ErrPoolClosed = errors.New("detector pool closed")

// Pool holds several instances of the same Detector so frames can be
// detected on multiple goroutines.  Detectors keep per instance buffers and
// are not safe for concurrent use on their own.
type Pool struct {
	detectors chan Detector
	size      int
	mu        sync.RWMutex
	closed    bool
}

// NewPool creates size detectors using newDetector
func NewPool(size int, newDetector func() (Detector, error)) (*Pool, error) {

	if size < 1 {
		size = 1
	}

	p := &Pool{
		detectors: make(chan Detector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		d, err := newDetector()

		if err != nil {
			// close any instances created before the error
			p.Close()
			return nil, err
		}

		p.Return(d)
	}

	return p, nil
}

// Size returns the number of detectors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get takes a detector from the pool waiting until one is free.  ok is
// false once the pool is closed.
func (p *Pool) Get() (d Detector, ok bool) {
	d, ok = <-p.detectors
	return d, ok
}

// Return a detector to the pool, if the pool has been closed the detector
// is closed instead
func (p *Pool) Return(d Detector) {

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		d.Close()
		return
	}

	select {
	case p.detectors <- d:
	default:
		// pool is full
		d.Close()
	}
}

// Detect implements Detector using the next free detector in the pool
func (p *Pool) Detect(img gocv.Mat) ([]DetectResult, error) {

	d, ok := p.Get()

	if !ok {
		return nil, ErrPoolClosed
	}

	defer p.Return(d)

	return d.Detect(img)
}

// Close the pool and all idle detectors in it, detectors in use are closed
// when returned
func (p *Pool) Close() error {

	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil
	}

	p.closed = true
	close(p.detectors)
	p.mu.Unlock()

	var errs []error

	for d := range p.detectors {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
