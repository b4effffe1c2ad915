package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Mode selects what a batch run does with its rows.
type Mode string

const (
	// ModeValidate dry-runs the batch and reports every issue.
	ModeValidate Mode = "validate"
	// ModeMap produces canonical records, creating soft entities as needed.
	ModeMap Mode = "map"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeValidate || m == ModeMap
}

// Outcome is the result of one batch run; exactly one field is set,
// matching the mode.
type Outcome struct {
	Validation *ValidationReport
	Mapping    *MappingResult
}

// Engine is the batch orchestrator and the package's public entry point.
// It is safe for concurrent use: each Run builds its own ReferenceSet and
// nothing is shared between batches.
type Engine struct {
	store   Store
	loader  *Loader
	limiter *Limiter
}

// NewEngine creates an Engine over the given store. maxConcurrent bounds how
// many batches may run at once (rows within a batch are always sequential);
// maxWait is how long a batch waits for a slot before failing with
// ErrTooManyImports.
func NewEngine(store Store, maxConcurrent int, maxWait time.Duration) *Engine {
	return &Engine{
		store:   store,
		loader:  NewLoader(store),
		limiter: NewLimiter(maxConcurrent, maxWait),
	}
}

// Run processes one batch of rows in the given mode.
//
// The ReferenceSet is loaded once per call and discarded afterwards. Only a
// reference-load failure (or limiter rejection) aborts the call; every
// row-level problem is captured into the returned report/result, so even a
// batch where every row is invalid returns a best-effort outcome.
func (e *Engine) Run(ctx context.Context, rows []RawRow, mode Mode) (*Outcome, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown import mode: %q", mode)
	}

	if err := e.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer e.limiter.Release()

	start := time.Now()

	refs, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeMap:
		result := e.mapRows(ctx, rows, refs)
		slog.Info("import batch mapped",
			"rows", len(rows),
			"mapped", len(result.Success),
			"failed", len(result.Errors),
			"duration", time.Since(start),
		)
		return &Outcome{Mapping: result}, nil

	default:
		report := validateRows(rows, refs)
		slog.Info("import batch validated",
			"rows", len(rows),
			"valid", report.ValidCount,
			"invalid", len(report.Invalid),
			"duration", time.Since(start),
		)
		return &Outcome{Validation: report}, nil
	}
}

// Validate dry-runs a batch. Shorthand for Run with ModeValidate.
func (e *Engine) Validate(ctx context.Context, rows []RawRow) (*ValidationReport, error) {
	out, err := e.Run(ctx, rows, ModeValidate)
	if err != nil {
		return nil, err
	}
	return out.Validation, nil
}

// Map runs the committing pass. Shorthand for Run with ModeMap.
func (e *Engine) Map(ctx context.Context, rows []RawRow) (*MappingResult, error) {
	out, err := e.Run(ctx, rows, ModeMap)
	if err != nil {
		return nil, err
	}
	return out.Mapping, nil
}

// References loads a fresh reference snapshot. The admin screens use it to
// populate their dropdowns; it is the same read path the engine itself uses.
func (e *Engine) References(ctx context.Context) (*ReferenceSet, error) {
	return e.loader.Load(ctx)
}

// LimiterStatus exposes the limiter state for monitoring and shutdown.
func (e *Engine) LimiterStatus() LimiterStatus {
	return e.limiter.Status()
}

// WaitForBatches blocks until all in-flight batches complete, for graceful
// shutdown.
func (e *Engine) WaitForBatches(ctx context.Context) error {
	return e.limiter.WaitForDrain(ctx)
}
