package monthly_close

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ABC band upper bounds on the cumulative cost share, inclusive.
const (
	rankALimit = 0.80
	rankBLimit = 0.95
	rankCLimit = 0.99
)

// rankFor maps a cumulative share to its ABC class.
func rankFor(share float64) string {
	switch {
	case share <= rankALimit:
		return "A"
	case share <= rankBLimit:
		return "B"
	case share <= rankCLimit:
		return "C"
	default:
		return "D"
	}
}

// RankABC sorts rows by trailing cost, highest first, keeping input order on
// ties, and assigns the running cost, its share of the total and the ABC
// class. It reports whether the total cost was zero.
//
// Accum% includes the row's own cost. The class is taken from the share
// reached before the row, so the product that crosses a band limit still
// belongs to that band and a single product is always A.
//
// A zero total leaves every share undefined. Under DegenerateRankD every row
// gets a share of 1 and class D; under DegenerateFail ErrDegenerateAggregate
// is returned and rows are left unranked.
func RankABC(rows []ReportRow, policy DegeneratePolicy) (bool, error) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Metrics.COGS12 > rows[j].Metrics.COGS12
	})

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.Metrics.COGS12))
	}

	degenerate := len(rows) > 0 && total.IsZero()
	if degenerate && policy == DegenerateFail {
		return true, ErrDegenerateAggregate
	}

	accum := decimal.Zero
	for i := range rows {
		before := accum
		accum = accum.Add(decimal.NewFromFloat(rows[i].Metrics.COGS12))
		rows[i].AccumCost = accum.InexactFloat64()

		if degenerate {
			rows[i].AccumShare = 1
			rows[i].Rank = "D"
			continue
		}
		rows[i].AccumShare = accum.Div(total).InexactFloat64()
		rows[i].Rank = rankFor(before.Div(total).InexactFloat64())
	}

	return degenerate, nil
}
