package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CellKind is the type a source file recorded for a cell.
type CellKind uint8

const (
	// CellUnknown marks cells of formats without types, such as csv.
	CellUnknown CellKind = iota
	CellText
	CellNumber
	// CellDate cells hold an RFC 3339 timestamp.
	CellDate
)

// Sheet is one named sub-table of a spreadsheet export. Header holds the raw
// first row; Rows hold every following row as read from the file.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
	// Kinds is aligned with Rows, or nil when the format has no cell types.
	Kinds [][]CellKind
}

// Kind returns the kind of cell (row, col), CellUnknown when not recorded.
func (s Sheet) Kind(row, col int) CellKind {
	if row >= len(s.Kinds) || col >= len(s.Kinds[row]) {
		return CellUnknown
	}
	return s.Kinds[row][col]
}

// Workbook is a decoded source file. Sheets keep their order from the file.
type Workbook struct {
	Name   string
	Sheets []Sheet
	// DecimalComma is set for text exports that write 1.234,5 for 1234.5.
	DecimalComma bool
}

// RowCount returns the number of data rows across all sheets.
func (w Workbook) RowCount() int {
	n := 0
	for _, s := range w.Sheets {
		n += len(s.Rows)
	}
	return n
}

// RunStatus represents the final state of a pipeline run
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run tracks a single execution of a pipeline. It only lives for the duration
// of the request that triggered it.
type Run struct {
	ID            string
	PipelineName  string
	Period        string
	Status        RunStatus
	InventoryRows int
	SalesRows     int
	OutputRows    int
	Degenerate    bool
	StartedAt     time.Time
	CompletedAt   time.Time
	ErrorMessage  string
}

// NewRun starts tracking a run of the named pipeline.
func NewRun(name, period string) *Run {
	return &Run{
		ID:           uuid.NewString(),
		PipelineName: name,
		Period:       period,
		StartedAt:    time.Now(),
	}
}

// Complete marks the run as completed.
func (r *Run) Complete(outputRows int, degenerate bool) {
	r.Status = StatusCompleted
	r.OutputRows = outputRows
	r.Degenerate = degenerate
	r.CompletedAt = time.Now()
}

// Fail marks the run as failed with err.
func (r *Run) Fail(err error) {
	r.Status = StatusFailed
	r.ErrorMessage = err.Error()
	r.CompletedAt = time.Now()
}

// Duration is the wall time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Log writes the run summary to l.
func (r *Run) Log(l zerolog.Logger) {
	var evt *zerolog.Event
	if r.Status == StatusFailed {
		evt = l.Error().Str("error", r.ErrorMessage)
	} else {
		evt = l.Info()
	}
	evt.
		Str("run_id", r.ID).
		Str("pipeline", r.PipelineName).
		Str("period", r.Period).
		Str("status", string(r.Status)).
		Int("inventory_rows", r.InventoryRows).
		Int("sales_rows", r.SalesRows).
		Int("output_rows", r.OutputRows).
		Bool("degenerate", r.Degenerate).
		Dur("duration", r.Duration()).
		Msg("pipeline run finished")
}
