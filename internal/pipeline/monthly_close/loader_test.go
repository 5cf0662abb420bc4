package monthly_close

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
)

func TestLoadInventory_RenamesAndNormalizes(t *testing.T) {
	table, err := LoadInventory(inventoryBook(
		stock("a-01", "Tornillo", "10", "2.5", "Activo", "NBO"),
		stock("B 02", "Tuerca", "1,200", "", "", ""),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"Product", "Descripción", "OnHandQty", "AvgPriceTotal", "Estatus", "Rama"}, table.Header,
		"optional columns keep their source header")
	require.Len(t, table.Records, 2)

	a := table.Records[0]
	assert.Equal(t, "A01", a.Product)
	assert.Equal(t, "A01", a.Cells[0], "product cell holds the normalized code")
	assert.Equal(t, 10.0, a.OnHandQty)
	assert.Equal(t, 2.5, a.AvgPriceTotal)
	assert.True(t, a.HasAvgPrice)
	assert.Equal(t, "Activo", a.Status)
	assert.Equal(t, "NBO", a.Rama)

	b := table.Records[1]
	assert.Equal(t, 1200.0, b.OnHandQty)
	assert.False(t, b.HasAvgPrice)
}

func TestLoadInventory_ConcatenatesSheets(t *testing.T) {
	wb := pipeline.Workbook{Sheets: []pipeline.Sheet{
		{
			Name:   "Almacen 1",
			Header: []string{" Número de artículo ", "TTL", "Precio promedio total"},
			Rows:   [][]string{{"X1", "1", "1"}, {"", "", ""}},
		},
		{
			Name:   "Almacen 2",
			Header: []string{"Número de artículo", "Precio promedio total.", "TTL", "Rama"},
			Rows:   [][]string{{"X2", "3", "2", "NBO"}},
		},
	}}

	table, err := LoadInventory(wb)
	require.NoError(t, err)

	assert.Equal(t, []string{"Product", "OnHandQty", "AvgPriceTotal", "Rama"}, table.Header)
	require.Len(t, table.Records, 2, "blank row is dropped")
	assert.Equal(t, []string{"X1", "1", "1", ""}, table.Records[0].Cells)
	assert.Equal(t, "X2", table.Records[1].Product)
	assert.Equal(t, 2.0, table.Records[1].OnHandQty)
	assert.Equal(t, 3.0, table.Records[1].AvgPriceTotal)
	assert.Equal(t, "NBO", table.Records[1].Rama)
}

func TestLoadInventory_MergesDuplicateCodes(t *testing.T) {
	table, err := LoadInventory(inventoryBook(
		stock("A-01", "primera", "10", "2", "", ""),
		stock("B-01", "otra", "1", "1", "", ""),
		stock("a 01", "segunda", "30", "4", "", ""),
		stock("--", "sin codigo", "5", "1", "", ""),
	))
	require.NoError(t, err)

	require.Len(t, table.Records, 3)
	assert.Equal(t, 1, table.Merged)
	assert.Equal(t, 1, table.Uncoded)

	a := table.Records[0]
	assert.Equal(t, "A01", a.Product)
	assert.Equal(t, "primera", a.Cells[1])
	assert.Equal(t, 40.0, a.OnHandQty)
	assert.InDelta(t, 3.5, a.AvgPriceTotal, 1e-9)

	uncoded := table.Records[2]
	assert.Equal(t, "", uncoded.Product)
	assert.Equal(t, 5.0, uncoded.OnHandQty)
}

func TestLoadInventory_UncodedRowsAreNotMerged(t *testing.T) {
	table, err := LoadInventory(inventoryBook(
		stock("", "sin codigo", "7", "1", "", ""),
		stock("#", "otro", "2", "1", "", ""),
	))
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, 0, table.Merged)
	assert.Equal(t, 2, table.Uncoded)
}

func TestLoadInventory_StatusAliasKeepsHeader(t *testing.T) {
	wb := pipeline.Workbook{Sheets: []pipeline.Sheet{{
		Header: []string{"Número de artículo", "TTL", "Precio promedio total", "ESTADO"},
		Rows:   [][]string{{"A01", "1", "1", "descontinuado"}},
	}}}

	table, err := LoadInventory(wb)
	require.NoError(t, err)

	assert.Equal(t, []string{"Product", "OnHandQty", "AvgPriceTotal", "ESTADO"}, table.Header)
	assert.Equal(t, "descontinuado", table.Records[0].Status)
}

func TestLoadInventory_DecimalComma(t *testing.T) {
	wb := inventoryBook(stock("A01", "", "1.200", "1,5", "", ""))
	wb.DecimalComma = true

	table, err := LoadInventory(wb)
	require.NoError(t, err)

	assert.Equal(t, 1200.0, table.Records[0].OnHandQty)
	assert.Equal(t, 1.5, table.Records[0].AvgPriceTotal)
	assert.True(t, table.DecimalComma)
}

func TestLoadInventory_KeepsCellKinds(t *testing.T) {
	wb := inventoryBook(stock("a-01", "007123", "10", "2", "", ""))
	wb.Sheets[0].Kinds = [][]pipeline.CellKind{{
		pipeline.CellText, pipeline.CellText, pipeline.CellNumber, pipeline.CellNumber,
	}}

	table, err := LoadInventory(wb)
	require.NoError(t, err)

	kinds := table.Records[0].Kinds
	require.Len(t, kinds, len(table.Header))
	assert.Equal(t, pipeline.CellText, kinds[0])
	assert.Equal(t, pipeline.CellText, kinds[1])
	assert.Equal(t, pipeline.CellNumber, kinds[2])
	assert.Equal(t, pipeline.CellUnknown, kinds[4], "kinds past the recorded ones are unknown")
}

func TestLoadInventory_SchemaMismatch(t *testing.T) {
	wb := pipeline.Workbook{Sheets: []pipeline.Sheet{{
		Header: []string{"Número de artículo", "Existencia"},
		Rows:   [][]string{{"A", "1"}},
	}}}

	_, err := LoadInventory(wb)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "OnHandQty")
	assert.Contains(t, err.Error(), "AvgPriceTotal")
	assert.NotContains(t, err.Error(), "Rama", "optional columns are not required")
}

func TestLoadInventory_AcceptsCanonicalNames(t *testing.T) {
	wb := pipeline.Workbook{Sheets: []pipeline.Sheet{{
		Header: []string{"Product", "OnHandQty", "AvgPriceTotal", "Mar-qty-2024"},
		Rows:   [][]string{{"A01", "2", "3", "7"}},
	}}}

	table, err := LoadInventory(wb)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, 2.0, table.Records[0].OnHandQty)
}

func TestLoadSales(t *testing.T) {
	table, err := LoadSales(salesBook(
		sale("A 01", "3", "30", "18", "15", "3", "2024"),
		sale("A-01", "x", "1,000.5", "abc", "31", "4", "2024"),
		sale("B", "1", "1", "1", "", "3", "2024"),
	))
	require.NoError(t, err)
	require.Len(t, table.Transactions, 3)

	tx := table.Transactions[0]
	assert.Equal(t, "A01", tx.Product)
	assert.Equal(t, 3.0, tx.Qty)
	assert.True(t, tx.HasFecha)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Fecha)

	bad := table.Transactions[1]
	assert.Equal(t, 0.0, bad.Qty, "unparseable quantity is zero")
	assert.Equal(t, 1000.5, bad.TotalLineas)
	assert.Equal(t, 0.0, bad.TotalCosto)
	assert.False(t, bad.HasFecha, "April has 30 days")
	assert.True(t, bad.Dia.Valid)

	noDay := table.Transactions[2]
	assert.False(t, noDay.Dia.Valid)
	assert.False(t, noDay.HasFecha)
	assert.Equal(t, NullInt{Int: 3, Valid: true}, noDay.Mes)

	assert.Len(t, table.Products(), 2)
}

func TestLoadSales_DecimalComma(t *testing.T) {
	wb := salesBook(sale("A01", "1,5", "1.234,5", "10,25", "15", "3", "2024"))
	wb.DecimalComma = true

	table, err := LoadSales(wb)
	require.NoError(t, err)

	tx := table.Transactions[0]
	assert.Equal(t, 1.5, tx.Qty)
	assert.Equal(t, 1234.5, tx.TotalLineas)
	assert.Equal(t, 10.25, tx.TotalCosto)
	assert.True(t, tx.HasFecha)
}

func TestSalesTable_ProductsSkipsUncoded(t *testing.T) {
	table, err := LoadSales(salesBook(
		sale("--", "1", "1", "1", "1", "3", "2024"),
		sale("A01", "1", "1", "1", "1", "3", "2024"),
	))
	require.NoError(t, err)

	assert.Equal(t, map[string]struct{}{"A01": {}}, table.Products())
}

func TestLoadSales_SchemaMismatch(t *testing.T) {
	wb := pipeline.Workbook{Sheets: []pipeline.Sheet{{
		Header: []string{"Número de artículo", "Cantidad", "Total líneas", "Total Costo", "Fecha"},
	}}}

	_, err := LoadSales(wb)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "sales")
	assert.Contains(t, err.Error(), "Dia, Mes, Anio")
}

func TestFoldColumnName(t *testing.T) {
	assert.Equal(t, "numerodearticulo", foldColumnName("Número de artículo"))
	assert.Equal(t, "numerodearticulo", foldColumnName("NUMERO_DE_ARTICULO"))
	assert.Equal(t, "ano", foldColumnName("Año"))
	assert.Equal(t, "totallineas", foldColumnName("Total  líneas"))
}
