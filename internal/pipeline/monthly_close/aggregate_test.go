package monthly_close

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBoth(t *testing.T, inv [][]string, ven [][]string) (*InventoryTable, *SalesTable) {
	t.Helper()
	it, err := LoadInventory(inventoryBook(inv...))
	require.NoError(t, err)
	st, err := LoadSales(salesBook(ven...))
	require.NoError(t, err)
	return it, st
}

func TestAggregate_WindowBoundaries(t *testing.T) {
	inv, sales := loadBoth(t,
		[][]string{stock("P1", "", "1", "1", "", "")},
		[][]string{
			sale("P1", "1", "100", "10", "28", "2", "2023"), // before window
			sale("P1", "2", "200", "20", "1", "3", "2023"),  // first day
			sale("P1", "4", "400", "40", "31", "3", "2024"), // last day
			sale("P1", "8", "800", "80", "1", "4", "2024"),  // after window
		},
	)
	period, err := ParsePeriod("2024-03")
	require.NoError(t, err)

	rows := Aggregate(inv, sales, period)
	require.Len(t, rows, 1)

	assert.Equal(t, 600.0, rows[0].Sls12)
	assert.Equal(t, 60.0, rows[0].Cogs12)
	assert.Equal(t, 6.0, rows[0].Qty12)
	assert.Equal(t, int64(4), rows[0].PeriodQty)
}

func TestAggregate_PeriodQtyUsesRawFields(t *testing.T) {
	inv, sales := loadBoth(t,
		[][]string{stock("P1", "", "1", "1", "", "")},
		[][]string{
			sale("P1", "2.5", "0", "0", "", "3", "2024"),   // no day, still in the period
			sale("P1", "1", "0", "0", "31", "2", "2024"),   // invalid date, other month
			sale("P1", "1.25", "0", "0", "40", "3", "2024"), // invalid date, same month
		},
	)
	period, _ := ParsePeriod("2024-03")

	rows := Aggregate(inv, sales, period)
	assert.Equal(t, int64(3), rows[0].PeriodQty, "3.75 truncated")
	assert.Equal(t, 0.0, rows[0].Qty12, "rows without a valid date stay out of the window")
}

func TestAggregate_ZeroFillAndCardinality(t *testing.T) {
	inv, sales := loadBoth(t,
		[][]string{
			stock("P1", "", "5", "1", "", ""),
			stock("P2", "", "0", "1", "", ""),
			stock("p-1", "", "5", "1", "", ""),
		},
		[][]string{
			sale("P1", "1", "10", "5", "1", "3", "2024"),
			sale("P1", "1", "10", "5", "2", "3", "2024"),
			sale("ZZ", "1", "10", "5", "2", "3", "2024"),
		},
	)
	period, _ := ParsePeriod("2024-03")

	rows := Aggregate(inv, sales, period)
	require.Len(t, rows, 2, "one row per product code")

	seen := map[string]int{}
	for _, r := range rows {
		seen[r.Product]++
	}
	assert.Equal(t, map[string]int{"P1": 1, "P2": 1}, seen)

	assert.Equal(t, 20.0, rows[0].Sls12)
	assert.Equal(t, int64(2), rows[0].PeriodQty)

	p2 := rows[1]
	assert.Zero(t, p2.Sls12)
	assert.Zero(t, p2.Cogs12)
	assert.Zero(t, p2.Qty12)
	assert.Zero(t, p2.PeriodQty)
}

func TestAggregate_MoneySumsAreExact(t *testing.T) {
	ven := make([][]string, 0, 10)
	for i := 0; i < 10; i++ {
		ven = append(ven, sale("P1", "1", "0.1", "0.1", "1", "3", "2024"))
	}
	inv, sales := loadBoth(t, [][]string{stock("P1", "", "1", "1", "", "")}, ven)
	period, _ := ParsePeriod("2024-03")

	rows := Aggregate(inv, sales, period)
	assert.Equal(t, 1.0, rows[0].Sls12)
}

func TestAggregate_UncodedRecordsNeverJoin(t *testing.T) {
	inv, sales := loadBoth(t,
		[][]string{
			stock("", "sin codigo", "7", "1", "", ""),
			stock("P1", "", "1", "1", "", ""),
		},
		[][]string{
			sale("", "5", "50", "25", "1", "3", "2024"),
			sale("P1", "1", "10", "5", "1", "3", "2024"),
		},
	)
	period, _ := ParsePeriod("2024-03")

	rows := Aggregate(inv, sales, period)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].Product)
	assert.Equal(t, int64(0), rows[0].PeriodQty)
	assert.Equal(t, 0.0, rows[0].Cogs12)
	assert.Equal(t, 5.0, rows[1].Cogs12)
}
