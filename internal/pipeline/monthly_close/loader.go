package monthly_close

import (
	"strings"

	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
)

// LoadInventory reshapes the inventory workbook into one record per
// normalized product code.
//
// Rows sharing a code after normalization are merged: the first row's cells
// are kept, quantities are summed and the average price is weighted by
// quantity. Rows whose code normalizes to "" are kept one record each; they
// never join sales.
func LoadInventory(wb pipeline.Workbook) (*InventoryTable, error) {
	flat := flatten(wb)
	idx, err := resolveColumns("inventory", flat.header, inventoryColumns)
	if err != nil {
		return nil, err
	}

	nf := numberFormat{decimalComma: wb.DecimalComma}
	table := &InventoryTable{
		Header:       renamedHeader(flat.header, idx, inventoryColumns),
		DecimalComma: wb.DecimalComma,
	}
	byCode := make(map[string]int, len(flat.rows))
	for r, row := range flat.rows {
		code := NormalizeCode(cellAt(row, idx[ColProduct]))

		price, hasPrice := nf.parse(cellAt(row, idx[ColAvgPriceTotal]))
		rec := InventoryRecord{
			Product:       code,
			OnHandQty:     nf.float(cellAt(row, idx[ColOnHandQty])),
			AvgPriceTotal: price,
			HasAvgPrice:   hasPrice,
			Status:        cellAt(row, idx[ColStatus]),
			Rama:          cellAt(row, idx[ColRama]),
			Cells:         row,
			Kinds:         flat.kinds[r],
		}
		rec.Cells[idx[ColProduct]] = code
		rec.Kinds[idx[ColProduct]] = pipeline.CellText

		if code == "" {
			table.Uncoded++
			table.Records = append(table.Records, rec)
			continue
		}
		if i, ok := byCode[code]; ok {
			mergeInventory(&table.Records[i], rec)
			table.Merged++
			continue
		}
		byCode[code] = len(table.Records)
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// mergeInventory folds dup into rec.
func mergeInventory(rec *InventoryRecord, dup InventoryRecord) {
	qty := rec.OnHandQty + dup.OnHandQty
	switch {
	case !dup.HasAvgPrice:
	case !rec.HasAvgPrice:
		rec.AvgPriceTotal, rec.HasAvgPrice = dup.AvgPriceTotal, true
	case qty > 0:
		rec.AvgPriceTotal = (rec.OnHandQty*rec.AvgPriceTotal + dup.OnHandQty*dup.AvgPriceTotal) / qty
	}
	rec.OnHandQty = qty
}

// LoadSales reshapes the sales workbook into transactions. Every row is kept;
// rows with an invalid date only drop out of the date-windowed aggregates.
func LoadSales(wb pipeline.Workbook) (*SalesTable, error) {
	flat := flatten(wb)
	idx, err := resolveColumns("sales", flat.header, salesColumns)
	if err != nil {
		return nil, err
	}

	nf := numberFormat{decimalComma: wb.DecimalComma}
	table := &SalesTable{Transactions: make([]SalesTransaction, 0, len(flat.rows))}
	for _, row := range flat.rows {
		get := func(name string) string { return cellAt(row, idx[name]) }

		tx := SalesTransaction{
			Product:     NormalizeCode(get(ColProduct)),
			Qty:         nf.float(get(ColQty)),
			TotalLineas: nf.float(get(ColTotalLineas)),
			TotalCosto:  nf.float(get(ColTotalCosto)),
			Dia:         nf.component(get(ColDia)),
			Mes:         nf.component(get(ColMes)),
			Anio:        nf.component(get(ColAnio)),
		}
		tx.Fecha, tx.HasFecha = composeDate(tx.Anio, tx.Mes, tx.Dia)
		table.Transactions = append(table.Transactions, tx)
	}

	return table, nil
}

// isDiscontinued matches the status literal of both export languages.
func isDiscontinued(status string) bool {
	return strings.EqualFold(status, "DESCONTINUADO") || strings.EqualFold(status, "DISCONTINUED")
}

// isNBO reports whether rama is the NBO branch.
func isNBO(rama string) bool {
	return strings.EqualFold(rama, "NBO")
}
