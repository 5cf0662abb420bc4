package monthly_close

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
)

// MonthlyClosePipeline merges an inventory extract with the sales log into
// the closed inventory report of one period.
type MonthlyClosePipeline struct {
	config     Config
	calculator *MetricsCalculator
	log        zerolog.Logger
}

// NewMonthlyClosePipeline creates a new monthly close pipeline instance.
func NewMonthlyClosePipeline(cfg Config, log zerolog.Logger) *MonthlyClosePipeline {
	if cfg.Inclusion == "" {
		cfg.Inclusion = InclusionAnySale
	}
	if cfg.DegeneratePolicy == "" {
		cfg.DegeneratePolicy = DegenerateRankD
	}
	return &MonthlyClosePipeline{
		config:     cfg,
		calculator: NewMetricsCalculator(cfg.StatusFlags),
		log:        log,
	}
}

// Name returns the unique identifier of this pipeline.
func (p *MonthlyClosePipeline) Name() string {
	return "monthly_close"
}

// Run closes period. The period is checked before either workbook is read;
// any error aborts the run without a partial report.
func (p *MonthlyClosePipeline) Run(inv, ven pipeline.Workbook, period string) (*Report, error) {
	// 1) Parse the period
	per, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	// 2) Load and reshape both sources
	inventory, err := LoadInventory(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory %s: %w", inv.Name, err)
	}
	if inventory.Merged > 0 || inventory.Uncoded > 0 {
		p.log.Warn().
			Str("period", per.String()).
			Int("merged", inventory.Merged).
			Int("uncoded", inventory.Uncoded).
			Msg("inventory rows merged by product code or kept without one")
	}

	sales, err := LoadSales(ven)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales %s: %w", ven.Name, err)
	}

	// 3) Join period and trailing aggregates
	rows := Aggregate(inventory, sales, per)

	// 4) Derived metrics and status flags
	for i := range rows {
		rows[i].Metrics = p.calculator.Calculate(&rows[i])
		p.calculator.ApplyFlags(&rows[i])
	}

	// 5) ABC ranking over every row, before filtering
	degenerate, err := RankABC(rows, p.config.DegeneratePolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to rank %s: %w", per, err)
	}
	if degenerate {
		p.log.Warn().
			Str("period", per.String()).
			Int("rows", len(rows)).
			Msg("total 12-month cost is zero, every product ranked D")
	}

	// 6) Inclusion filter
	rows = p.filter(rows, sales)

	report := newReport(per, inventory.Header, p.config.StatusFlags)
	report.numbers = numberFormat{decimalComma: inventory.DecimalComma}
	report.Rows = rows
	report.Degenerate = degenerate
	report.InventoryRows = len(inventory.Records)
	report.SalesRows = len(sales.Transactions)
	return report, nil
}

// filter drops products with nothing on hand and no sales history.
func (p *MonthlyClosePipeline) filter(rows []ReportRow, sales *SalesTable) []ReportRow {
	var sold map[string]struct{}
	if p.config.Inclusion == InclusionAnySale {
		sold = sales.Products()
	}

	kept := rows[:0]
	for _, row := range rows {
		keep := row.OnHandQty > 0
		if !keep {
			switch p.config.Inclusion {
			case InclusionTrailingSales:
				keep = row.Qty12 != 0
			default:
				_, keep = sold[row.Product]
			}
		}
		if keep {
			kept = append(kept, row)
		}
	}
	return kept
}
