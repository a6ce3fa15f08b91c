// Package mempool keeps sized pools of run buffers for the row scan.
package mempool

import (
	"sync"

	"github.com/MeKo-Tech/debarkoder/internal/rle"
)

const step = 256

var runPools sync.Map // key: size class (int), value: *sync.Pool

// sizeClass rounds n up to the next multiple of step, at least step.
func sizeClass(n int) int {
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func runPool(cls int) *sync.Pool {
	pAny, _ := runPools.LoadOrStore(cls, &sync.Pool{New: func() any {
		buf := make([]rle.Run, 0, cls)
		return &buf
	}})
	p, _ := pAny.(*sync.Pool)
	return p
}

// GetRuns returns an empty run buffer with capacity for at least n runs.
// The caller must return it via PutRuns when done.
func GetRuns(n int) []rle.Run {
	cls := sizeClass(n)
	p := runPool(cls)
	if p == nil {
		return make([]rle.Run, 0, cls)
	}
	bp, ok := p.Get().(*[]rle.Run)
	if !ok || cap(*bp) < cls {
		return make([]rle.Run, 0, cls)
	}
	return (*bp)[:0]
}

// PutRuns returns a buffer to the pool. Buffers whose capacity is not a
// size class are dropped. It is safe to pass a nil slice.
func PutRuns(buf []rle.Run) {
	if cap(buf) == 0 || cap(buf) != sizeClass(cap(buf)) {
		return
	}
	if p := runPool(cap(buf)); p != nil {
		buf = buf[:0]
		p.Put(&buf)
	}
}
