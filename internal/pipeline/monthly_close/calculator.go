package monthly_close

// daysPerYear converts the trailing cost into a daily burn rate.
const daysPerYear = 365

// MetricsCalculator derives the financial columns of a joined row.
type MetricsCalculator struct {
	statusFlags bool
}

// NewMetricsCalculator creates a calculator. statusFlags enables the
// discontinued and NBO columns.
func NewMetricsCalculator(statusFlags bool) *MetricsCalculator {
	return &MetricsCalculator{statusFlags: statusFlags}
}

// Calculate computes the derived metrics of row. Every ratio is zero when
// its denominator is not positive.
func (mc *MetricsCalculator) Calculate(row *ReportRow) Metrics {
	m := Metrics{}

	// 1. Inventory value, only for stock on hand. A missing price counts as 0.
	if row.OnHandQty > 0 && row.HasAvgPrice {
		m.InventoryValue = row.OnHandQty * row.AvgPriceTotal
	}

	// 2. Trailing twelve months, copied under their report labels
	m.Sales12 = row.Sls12
	m.COGS12 = row.Cogs12
	m.Units12 = row.Qty12

	// 3. Gross margin = (sales - cost) / sales
	if m.Sales12 > 0 {
		m.GrossMargin = (m.Sales12 - m.COGS12) / m.Sales12
	}

	// 4. Days of stock = inventory value / daily cost
	if m.COGS12 > 0 {
		m.DaysOfStock = m.InventoryValue / (m.COGS12 / daysPerYear)
	}

	// 5. GMROI = (sales - cost) / inventory value
	if m.InventoryValue > 0 {
		m.GMROI = (m.Sales12 - m.COGS12) / m.InventoryValue
	}

	return m
}

// ApplyFlags sets the status columns of row from its metrics.
func (mc *MetricsCalculator) ApplyFlags(row *ReportRow) {
	if !mc.statusFlags {
		return
	}

	if isDiscontinued(row.Status) {
		v := row.Metrics.InventoryValue
		row.DiscontinuedInv = &v
	}
	if isNBO(row.Rama) {
		row.NBOInv = row.Metrics.InventoryValue
	}
}
