package recognize

import (
	"log/slog"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
)

// fold keeps the best candidate seen so far. Rows must be offered in
// ascending order for ties to resolve to the earliest row.
type fold struct {
	best    Result
	found   bool
	scanned int
	logger  *slog.Logger
}

func newFold(logger *slog.Logger) *fold {
	return &fold{
		best:   Result{Digits: []i2of5.Digit{i2of5.Unresolved}, Row: -1, Errors: 1},
		logger: logger,
	}
}

// offer folds the outcome of row y and reports whether scanning can stop.
func (f *fold) offer(y int, out i2of5.Outcome) bool {
	f.scanned++
	if !out.Decoded() {
		f.logger.Debug("row skipped", "row", y, "status", out.Status.String())
		return false
	}

	errs := out.Errors()
	if f.found && errs >= f.best.Errors {
		return false
	}
	f.best = Result{Digits: out.Digits, Row: y, Errors: errs, Cutoff: out.Cutoff}
	f.found = true

	if errs == 0 {
		f.logger.Debug("full match", "row", y, "digits", len(out.Digits))
		return true
	}
	f.logger.Debug("candidate promoted", "row", y, "unresolved", errs)
	return false
}

func (f *fold) result() Result {
	res := f.best
	res.Scanned = f.scanned
	return res
}
