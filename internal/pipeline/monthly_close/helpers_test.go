package monthly_close

import "github.com/andresuchdata/invclose/backend-go/internal/pipeline"

var (
	inventoryHeader = []string{"Número de artículo", "Descripción", "TTL", "Precio promedio total.", "Estatus", "Rama"}
	salesHeader     = []string{"Número de artículo", "Cantidad", "Total líneas", "Total Costo", "Día", "Mes", "Año"}
)

func inventoryBook(rows ...[]string) pipeline.Workbook {
	return pipeline.Workbook{
		Name:   "inventario.xlsx",
		Sheets: []pipeline.Sheet{{Name: "Hoja1", Header: inventoryHeader, Rows: rows}},
	}
}

func salesBook(rows ...[]string) pipeline.Workbook {
	return pipeline.Workbook{
		Name:   "ventas.xlsx",
		Sheets: []pipeline.Sheet{{Name: "Hoja1", Header: salesHeader, Rows: rows}},
	}
}

// sale builds a sales row dated day/month/year.
func sale(code, qty, lineas, costo, dia, mes, anio string) []string {
	return []string{code, qty, lineas, costo, dia, mes, anio}
}

// stock builds an inventory row.
func stock(code, desc, qty, price, status, rama string) []string {
	return []string{code, desc, qty, price, status, rama}
}
