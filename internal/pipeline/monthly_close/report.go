package monthly_close

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
)

// Derived column names.
const (
	ColSls12           = "Sls12"
	ColCogs12          = "Cogs12"
	ColQty12           = "Qty12"
	ColInventoryValue  = "Inventory$"
	ColSales12         = "12-Mo-Sls$"
	ColCOGS12          = "12-Mo-COGS$"
	ColUnits12         = "12-Mo-Sales"
	ColGrossMargin     = "Gross Margin"
	ColDaysOfStock     = "Dy Stock"
	ColGMROI           = "GMROI"
	ColAccumCost       = "Accum $"
	ColAccumShare      = "Accum%"
	ColCOGSRank        = "COGS Rank"
	ColDiscontinuedInv = "Discontinued Inv"
	ColNBOInv          = "Inv. NBO $"
)

// Report is the closed inventory table of one period.
type Report struct {
	Period  Period
	Columns []string
	Rows    []ReportRow

	// Degenerate is set when the trailing cost total was zero and every row
	// was ranked D.
	Degenerate bool

	InventoryRows int
	SalesRows     int

	statusFlags bool
	numbers     numberFormat
	derivedAt   map[string]int
	productAt   int
}

// newReport lays out the columns: the inventory columns first, then the
// derived ones. A derived column that already exists in the inventory (a
// table closed in an earlier month) is overwritten in place.
func newReport(period Period, inventoryHeader []string, statusFlags bool) *Report {
	derived := []string{
		period.QtyColumn(),
		ColSls12, ColCogs12, ColQty12,
		ColInventoryValue, ColSales12, ColCOGS12, ColUnits12,
		ColGrossMargin, ColDaysOfStock, ColGMROI,
		ColAccumCost, ColAccumShare, ColCOGSRank,
	}
	if statusFlags {
		derived = append(derived, ColDiscontinuedInv, ColNBOInv)
	}

	r := &Report{
		Period:      period,
		Columns:     append([]string(nil), inventoryHeader...),
		statusFlags: statusFlags,
		derivedAt:   make(map[string]int, len(derived)),
		productAt:   lo.IndexOf(inventoryHeader, ColProduct),
	}
	for _, name := range derived {
		if i := lo.IndexOf(inventoryHeader, name); i >= 0 {
			r.derivedAt[name] = i
			continue
		}
		r.derivedAt[name] = len(r.Columns)
		r.Columns = append(r.Columns, name)
	}
	return r
}

// Header returns the output column names.
func (r *Report) Header() []string {
	return r.Columns
}

// Records returns the report as typed cell values aligned with Header.
// Inventory cells keep the type the source recorded; see cellValue. The
// product code is always a string.
func (r *Report) Records() [][]interface{} {
	out := make([][]interface{}, len(r.Rows))
	for i, row := range r.Rows {
		rec := make([]interface{}, len(r.Columns))
		for j, c := range row.Cells {
			if j < len(rec) {
				rec[j] = cellValue(c, kindAt(row.Kinds, j), r.numbers)
			}
		}
		if r.productAt >= 0 {
			rec[r.productAt] = row.Product
		}

		set := func(name string, v interface{}) { rec[r.derivedAt[name]] = v }
		set(r.Period.QtyColumn(), row.PeriodQty)
		set(ColSls12, row.Sls12)
		set(ColCogs12, row.Cogs12)
		set(ColQty12, row.Qty12)
		set(ColInventoryValue, row.Metrics.InventoryValue)
		set(ColSales12, row.Metrics.Sales12)
		set(ColCOGS12, row.Metrics.COGS12)
		set(ColUnits12, row.Metrics.Units12)
		set(ColGrossMargin, row.Metrics.GrossMargin)
		set(ColDaysOfStock, row.Metrics.DaysOfStock)
		set(ColGMROI, row.Metrics.GMROI)
		set(ColAccumCost, row.AccumCost)
		set(ColAccumShare, row.AccumShare)
		set(ColCOGSRank, row.Rank)
		if r.statusFlags {
			if row.DiscontinuedInv != nil {
				set(ColDiscontinuedInv, *row.DiscontinuedInv)
			} else {
				set(ColDiscontinuedInv, nil)
			}
			set(ColNBOInv, row.NBOInv)
		}

		out[i] = rec
	}
	return out
}

func kindAt(kinds []pipeline.CellKind, i int) pipeline.CellKind {
	if i < len(kinds) {
		return kinds[i]
	}
	return pipeline.CellUnknown
}

// cellValue types a passthrough cell for the output workbook. Blank cells
// are nil. Text stays text and dates stay dates. Cells of untyped sources
// become numbers when they parse as one under nf, unless a leading zero
// marks them as codes.
func cellValue(s string, kind pipeline.CellKind, nf numberFormat) interface{} {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	switch kind {
	case pipeline.CellText:
		return s
	case pipeline.CellNumber:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	case pipeline.CellDate:
		if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return t
		}
	default:
		if f, ok := nf.parse(trimmed); ok && !hasLeadingZero(trimmed) {
			return f
		}
	}
	return trimmed
}

// hasLeadingZero reports whether s is written like "007123".
func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}
