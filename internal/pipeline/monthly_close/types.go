package monthly_close

import (
	"time"

	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
)

// InclusionMode decides which products survive the final filter.
type InclusionMode string

const (
	// InclusionAnySale keeps products with stock on hand or with at least one
	// row anywhere in the sales table.
	InclusionAnySale InclusionMode = "any_sale"
	// InclusionTrailingSales keeps products with stock on hand or with a
	// nonzero trailing 12-month quantity.
	InclusionTrailingSales InclusionMode = "trailing_sales"
)

// DegeneratePolicy decides what happens when the trailing cost of all rows
// sums to zero and cumulative shares are undefined.
type DegeneratePolicy string

const (
	// DegenerateRankD sets Accum% to 1 and ranks every row D.
	DegenerateRankD DegeneratePolicy = "rank_d"
	// DegenerateFail aborts the run with ErrDegenerateAggregate.
	DegenerateFail DegeneratePolicy = "fail"
)

// Config holds configuration for the monthly close pipeline
type Config struct {
	StatusFlags      bool // emit "Discontinued Inv" and "Inv. NBO $"
	Inclusion        InclusionMode
	DegeneratePolicy DegeneratePolicy
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		StatusFlags:      true,
		Inclusion:        InclusionAnySale,
		DegeneratePolicy: DegenerateRankD,
	}
}

// InventoryRecord is one product of the on-hand extract after normalization.
type InventoryRecord struct {
	Product       string
	OnHandQty     float64
	AvgPriceTotal float64
	HasAvgPrice   bool
	Status        string
	Rama          string

	// Cells are the record's values aligned with InventoryTable.Header, Kinds
	// their source types.
	Cells []string
	Kinds []pipeline.CellKind
}

// InventoryTable is the loaded inventory source.
type InventoryTable struct {
	Header  []string // cleaned column names, required ones renamed
	Records []InventoryRecord
	// Merged counts rows folded into an earlier record with the same code.
	Merged int
	// Uncoded counts records without a usable product code.
	Uncoded int
	// DecimalComma is the number convention of the source.
	DecimalComma bool
}

// NullInt is an integer that may be missing.
type NullInt struct {
	Int   int
	Valid bool
}

// SalesTransaction is one sales line.
type SalesTransaction struct {
	Product     string
	Qty         float64
	TotalLineas float64
	TotalCosto  float64
	Dia         NullInt
	Mes         NullInt
	Anio        NullInt

	// Fecha is only meaningful when HasFecha is true.
	Fecha    time.Time
	HasFecha bool
}

// SalesTable is the loaded sales source.
type SalesTable struct {
	Transactions []SalesTransaction
}

// Products returns the set of every product code present in the table.
// Rows without a code are left out.
func (s *SalesTable) Products() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Transactions))
	for _, tx := range s.Transactions {
		if tx.Product != "" {
			set[tx.Product] = struct{}{}
		}
	}
	return set
}

// Metrics holds the derived financial columns of a row.
type Metrics struct {
	InventoryValue float64 // Inventory$
	Sales12        float64 // 12-Mo-Sls$
	COGS12         float64 // 12-Mo-COGS$
	Units12        float64 // 12-Mo-Sales
	GrossMargin    float64
	DaysOfStock    float64 // Dy Stock
	GMROI          float64
}

// ReportRow is one product of the final report.
type ReportRow struct {
	InventoryRecord

	// Aggregates joined from the sales table, zero filled.
	PeriodQty int64
	Sls12     float64
	Cogs12    float64
	Qty12     float64

	Metrics Metrics

	// ABC ranking.
	AccumCost  float64
	AccumShare float64
	Rank       string

	// Status flags. DiscontinuedInv is nil when the flag does not apply.
	DiscontinuedInv *float64
	NBOInv          float64
}
