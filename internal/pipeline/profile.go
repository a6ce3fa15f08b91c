package pipeline

import (
	"runtime"
	"sync/atomic"
)

// Profiler aggregates counters and timers across decodes. It is safe for
// concurrent use.
type Profiler struct {
	PrepareTimeNs   atomic.Int64
	RecognizeTimeNs atomic.Int64
	ImagesProcessed atomic.Int64
	ImagesDecoded   atomic.Int64
	ImagesComplete  atomic.Int64
	RowsScanned     atomic.Int64
}

// Record adds one image result.
func (p *Profiler) Record(res *ImageResult) {
	p.PrepareTimeNs.Add(res.Processing.PrepareNs)
	p.RecognizeTimeNs.Add(res.Processing.RecognizeNs)
	p.ImagesProcessed.Add(1)
	p.RowsScanned.Add(int64(res.RowsScanned))
	if res.Found {
		p.ImagesDecoded.Add(1)
	}
	if res.Complete {
		p.ImagesComplete.Add(1)
	}
}

// Snapshot returns cumulative metrics in milliseconds for readability.
func (p *Profiler) Snapshot() map[string]any {
	imgs := p.ImagesProcessed.Load()
	prep := p.PrepareTimeNs.Load()
	rec := p.RecognizeTimeNs.Load()
	out := map[string]any{
		"images":       imgs,
		"decoded":      p.ImagesDecoded.Load(),
		"complete":     p.ImagesComplete.Load(),
		"rows_scanned": p.RowsScanned.Load(),
		"prepare_ms":   prep / 1_000_000,
		"recognize_ms": rec / 1_000_000,
	}
	if imgs > 0 {
		out["prepare_ms_per_image"] = float64(prep) / 1_000_000.0 / float64(imgs)
		out["recognize_ms_per_image"] = float64(rec) / 1_000_000.0 / float64(imgs)
	}
	return out
}

// MemStats summarizes memory usage information.
type MemStats struct {
	AllocBytes uint64 `json:"alloc_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
	Goroutines int    `json:"goroutines"`
}

// GetMemStats captures current memory statistics.
func GetMemStats() MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemStats{
		AllocBytes: m.Alloc,
		SysBytes:   m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}
