package monthly_close

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
)

// Canonical column names.
const (
	ColProduct       = "Product"
	ColOnHandQty     = "OnHandQty"
	ColAvgPriceTotal = "AvgPriceTotal"
	ColStatus        = "Status"
	ColRama          = "Rama"

	ColQty         = "Qty"
	ColTotalLineas = "TotalLineas"
	ColTotalCosto  = "TotalCosto"
	ColDia         = "Dia"
	ColMes         = "Mes"
	ColAnio        = "Anio"
)

// column describes one canonical field of a source and the export headers it
// may appear under. Optional columns are only read; their header is kept.
type column struct {
	name     string
	aliases  []string
	required bool
}

var inventoryColumns = []column{
	{name: ColProduct, aliases: []string{"Número de artículo"}, required: true},
	{name: ColOnHandQty, aliases: []string{"TTL"}, required: true},
	{name: ColAvgPriceTotal, aliases: []string{"Precio promedio total"}, required: true},
	{name: ColStatus, aliases: []string{"Estatus", "Estado"}},
	{name: ColRama, aliases: []string{"Rama"}},
}

// renamedHeader returns header with the required columns of cols under
// their canonical names.
func renamedHeader(header []string, idx map[string]int, cols []column) []string {
	out := append([]string(nil), header...)
	for _, c := range cols {
		if i := idx[c.name]; c.required && i >= 0 {
			out[i] = c.name
		}
	}
	return out
}

var salesColumns = []column{
	{name: ColProduct, aliases: []string{"Número de artículo"}, required: true},
	{name: ColQty, aliases: []string{"Cantidad"}, required: true},
	{name: ColTotalLineas, aliases: []string{"Total líneas"}, required: true},
	{name: ColTotalCosto, aliases: []string{"Total Costo"}, required: true},
	{name: ColDia, aliases: []string{"Día"}, required: true},
	{name: ColMes, aliases: []string{"Mes"}, required: true},
	{name: ColAnio, aliases: []string{"Año"}, required: true},
}

// cleanHeader trims a header and strips one trailing period.
func cleanHeader(h string) string {
	h = strings.TrimSpace(h)
	return strings.TrimSuffix(h, ".")
}

// foldColumnName reduces a header to lowercase ASCII letters and digits so
// "Número de artículo", "numero de articulo" and "NUMERO_DE_ARTICULO" match.
func foldColumnName(name string) string {
	t := norm.NFKD.String(strings.ToLower(name))
	var b strings.Builder
	for _, r := range strings.ToLower(t) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// resolveColumns maps each canonical column to its index in header, or -1
// for optional columns that are absent.
func resolveColumns(source string, header []string, cols []column) (map[string]int, error) {
	folded := lo.Map(header, func(h string, _ int) string { return foldColumnName(h) })

	colIndex := func(names ...string) int {
		for _, name := range names {
			if i := lo.IndexOf(folded, foldColumnName(name)); i >= 0 {
				return i
			}
		}
		return -1
	}

	idx := make(map[string]int, len(cols))
	for _, c := range cols {
		idx[c.name] = colIndex(append([]string{c.name}, c.aliases...)...)
	}

	missing := lo.FilterMap(cols, func(c column, _ int) (string, bool) {
		return c.name, c.required && idx[c.name] < 0
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s source is missing columns %s (found %s)",
			ErrSchemaMismatch, source, strings.Join(missing, ", "), strings.Join(header, ", "))
	}
	return idx, nil
}

// flatTable is every sheet of a workbook aligned on one header. kinds is
// aligned with rows.
type flatTable struct {
	header []string
	rows   [][]string
	kinds  [][]pipeline.CellKind
}

// flatten concatenates every sheet of wb into one table. Headers are cleaned
// per sheet and columns are aligned by name in first-seen order. Columns
// with an empty header and fully blank rows are dropped.
func flatten(wb pipeline.Workbook) flatTable {
	var header []string
	pos := make(map[string]int)
	var rows [][]string
	var kinds [][]pipeline.CellKind

	for _, sheet := range wb.Sheets {
		// target[i] is the table column of sheet column i, -1 when dropped.
		target := make([]int, len(sheet.Header))
		seen := make(map[string]bool, len(sheet.Header))
		for i, h := range sheet.Header {
			name := cleanHeader(h)
			if name == "" || seen[name] {
				target[i] = -1
				continue
			}
			seen[name] = true
			p, ok := pos[name]
			if !ok {
				p = len(header)
				pos[name] = p
				header = append(header, name)
			}
			target[i] = p
		}

		for r, raw := range sheet.Rows {
			if lo.EveryBy(raw, func(c string) bool { return strings.TrimSpace(c) == "" }) {
				continue
			}
			row := make([]string, len(header))
			kind := make([]pipeline.CellKind, len(header))
			for i, c := range raw {
				if i < len(target) && target[i] >= 0 {
					row[target[i]] = c
					kind[target[i]] = sheet.Kind(r, i)
				}
			}
			rows = append(rows, row)
			kinds = append(kinds, kind)
		}
	}

	// Rows read before a later sheet added columns are padded.
	for i, row := range rows {
		if n := len(header) - len(row); n > 0 {
			rows[i] = append(row, make([]string, n)...)
			kinds[i] = append(kinds[i], make([]pipeline.CellKind, n)...)
		}
	}

	return flatTable{header: header, rows: rows, kinds: kinds}
}
