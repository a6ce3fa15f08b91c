package recognize

import (
	"context"
	"sync"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
)

type rowResult struct {
	y   int
	out i2of5.Outcome
	err error
}

// recognizeParallel evaluates rows in a worker pool and reduces the results
// in row order with the same fold as the sequential scan, so both produce
// the same Result. Outstanding rows are cancelled once a full match is
// confirmed.
func (r *Recognizer) recognizeParallel(ctx context.Context, src RowSource, rows int) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)

	jobs := make(chan int, r.opts.Workers)
	results := make(chan rowResult, rows)

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	for range min(r.opts.Workers, rows) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range jobs {
				if ctx.Err() != nil {
					return
				}
				out, err := r.evalRow(src, y)
				results <- rowResult{y: y, out: out, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for y := range rows {
			select {
			case jobs <- y:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	f := newFold(r.logger)
	pending := make(map[int]rowResult)
	next := 0
	for res := range results {
		pending[res.y] = res
		for {
			cur, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if cur.err != nil {
				return Result{}, cur.err
			}
			if f.offer(cur.y, cur.out) {
				r.logger.Debug("cancelling remaining rows", "row", cur.y, "outstanding", rows-next)
				return f.result(), nil
			}
		}
	}

	if next < rows {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
	}
	return f.result(), nil
}
