package pool

import (
	"sync"

	"golang.org/x/text/transform"
)

// BufferPool implements a pool of byte slices for efficient memory reuse
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified size
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a buffer from the pool or creates a new one if none are available
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool for reuse
func (bp *BufferPool) Put(buffer *[]byte) {
	// Reset buffer length but keep capacity
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// TransformerPool hands out transformer chains, which keep internal state
// and cannot be shared between goroutines.
type TransformerPool struct {
	pool sync.Pool
}

// NewTransformerPool creates a pool whose chains are built by newChain.
func NewTransformerPool(newChain func() transform.Transformer) *TransformerPool {
	return &TransformerPool{
		pool: sync.Pool{
			New: func() interface{} {
				return newChain()
			},
		},
	}
}

// Get retrieves a reset transformer chain.
func (tp *TransformerPool) Get() transform.Transformer {
	return tp.pool.Get().(transform.Transformer)
}

// Put resets the chain and returns it to the pool.
func (tp *TransformerPool) Put(t transform.Transformer) {
	t.Reset()
	tp.pool.Put(t)
}
