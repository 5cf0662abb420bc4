package monthly_close

import "github.com/shopspring/decimal"

// salesAggregate holds the windowed sums of one product.
type salesAggregate struct {
	periodQty decimal.Decimal
	sls12     decimal.Decimal
	cogs12    decimal.Decimal
	qty12     decimal.Decimal
}

// aggregateSales groups the sales table by product. The period quantity
// compares the raw year and month fields; the trailing sums only take rows
// whose composed date falls inside the period's trailing window.
func aggregateSales(sales *SalesTable, period Period) map[string]*salesAggregate {
	out := make(map[string]*salesAggregate)
	get := func(code string) *salesAggregate {
		a, ok := out[code]
		if !ok {
			a = &salesAggregate{}
			out[code] = a
		}
		return a
	}

	for _, tx := range sales.Transactions {
		if tx.Product == "" {
			continue
		}
		qty := decimal.NewFromFloat(tx.Qty)

		if tx.Anio.Valid && tx.Mes.Valid && tx.Anio.Int == period.Year && tx.Mes.Int == period.Month {
			a := get(tx.Product)
			a.periodQty = a.periodQty.Add(qty)
		}

		if tx.HasFecha && period.Contains(tx.Fecha) {
			a := get(tx.Product)
			a.sls12 = a.sls12.Add(decimal.NewFromFloat(tx.TotalLineas))
			a.cogs12 = a.cogs12.Add(decimal.NewFromFloat(tx.TotalCosto))
			a.qty12 = a.qty12.Add(qty)
		}
	}
	return out
}

// Aggregate left-joins the period and trailing aggregates onto the
// inventory. Products without sales get zeros, as do records without a
// code. The result keeps inventory order and has exactly one row per
// inventory record.
func Aggregate(inv *InventoryTable, sales *SalesTable, period Period) []ReportRow {
	aggs := aggregateSales(sales, period)

	rows := make([]ReportRow, len(inv.Records))
	for i, rec := range inv.Records {
		rows[i].InventoryRecord = rec
		a, ok := aggs[rec.Product]
		if !ok || rec.Product == "" {
			continue
		}
		rows[i].PeriodQty = a.periodQty.IntPart()
		rows[i].Sls12 = a.sls12.InexactFloat64()
		rows[i].Cogs12 = a.cogs12.InexactFloat64()
		rows[i].Qty12 = a.qty12.InexactFloat64()
	}
	return rows
}
