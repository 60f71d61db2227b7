package detect

import "sync"

// IDGenerator is a struct to hold a counter for generating the next
// incremental detection ID number
type IDGenerator struct {
	id int64
	sync.Mutex
}

// NewIDGenerator returns a generator whose first ID is 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental number
func (id *IDGenerator) GetNext() int64 {
	id.Lock()
	defer id.Unlock()
	id.id++
	return id.id
}

// Reset restarts numbering from 1
func (id *IDGenerator) Reset() {
	id.Lock()
	defer id.Unlock()
	id.id = 0
}
