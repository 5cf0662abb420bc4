package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/invclose/backend-go/internal/pipeline"
)

// ErrUnsupportedFormat is returned for payloads that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// zipMagic opens every xlsx file (an OOXML zip container).
var zipMagic = []byte("PK\x03\x04")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Format is a supported input encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat sniffs the zip signature first and falls back to the file
// extension, so files fetched by id without a name still decode.
func DetectFormat(name string, data []byte) (Format, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX, nil
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return "", fmt.Errorf("%w: %s is not a valid xlsx file", ErrUnsupportedFormat, name)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Decode reads an xlsx or csv payload into a workbook. Each xlsx sheet keeps
// its first row as header; empty sheets are skipped. A csv payload becomes a
// single sheet named after the file.
func Decode(name string, data []byte) (pipeline.Workbook, error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return pipeline.Workbook{}, err
	}

	switch format {
	case FormatXLSX:
		return readXLSX(name, data)
	default:
		return readCSV(name, data)
	}
}

func readXLSX(name string, data []byte) (pipeline.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return pipeline.Workbook{}, fmt.Errorf("failed to open xlsx file %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return pipeline.Workbook{}, fmt.Errorf("xlsx file %s has no sheets", name)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	dates := make(map[int]bool)

	wb := pipeline.Workbook{Name: name}
	for _, sheet := range sheets {
		// Raw values keep numbers unformatted ("1234.5", not "1,234.50").
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return pipeline.Workbook{}, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		kinds := make([][]pipeline.CellKind, len(rows)-1)
		for r := 1; r < len(rows); r++ {
			kinds[r-1] = make([]pipeline.CellKind, len(rows[r]))
			for c, v := range rows[r] {
				if v == "" {
					continue
				}
				kind, err := cellKind(f, sheet, c+1, r+1, dates)
				if err != nil {
					return pipeline.Workbook{}, fmt.Errorf("failed to read cell type in sheet %s: %w", sheet, err)
				}
				if kind == pipeline.CellDate {
					v, kind = serialToDate(v, date1904)
					rows[r][c] = v
				}
				kinds[r-1][c] = kind
			}
		}

		wb.Sheets = append(wb.Sheets, pipeline.Sheet{
			Name:   sheet,
			Header: rows[0],
			Rows:   rows[1:],
			Kinds:  kinds,
		})
	}

	return wb, nil
}

// cellKind classifies a non-blank cell. Numbers carry no type attribute in
// most files; their style tells dates apart. dates caches that per style.
func cellKind(f *excelize.File, sheet string, col, row int, dates map[int]bool) (pipeline.CellKind, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return pipeline.CellUnknown, err
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return pipeline.CellUnknown, err
	}
	if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
		return pipeline.CellText, nil
	}

	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return pipeline.CellUnknown, err
	}
	isDate, ok := dates[styleID]
	if !ok {
		style, err := f.GetStyle(styleID)
		if err != nil {
			return pipeline.CellUnknown, err
		}
		isDate = isDateStyle(style)
		dates[styleID] = isDate
	}
	if isDate {
		return pipeline.CellDate, nil
	}
	return pipeline.CellNumber, nil
}

// isDateStyle reports whether style shows a serial number as a date or time.
func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	switch n := style.NumFmt; {
	case n >= 14 && n <= 22, n >= 27 && n <= 36, n >= 45 && n <= 47, n >= 50 && n <= 58:
		return true
	}
	return false
}

// isDateFormatCode looks for date tokens outside quoted literals and
// bracketed sections such as colors or locales.
func isDateFormatCode(code string) bool {
	var inQuote, inBracket, escaped bool
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'y' || r == 'd' || r == 'h' || r == 'm' || r == 's':
			return true
		}
	}
	return false
}

// serialToDate turns an Excel serial into an RFC 3339 timestamp. Values that
// are not serials stay numbers.
func serialToDate(v string, date1904 bool) (string, pipeline.CellKind) {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v, pipeline.CellText
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return v, pipeline.CellNumber
	}
	return t.UTC().Format(time.RFC3339), pipeline.CellDate
}

func readCSV(name string, data []byte) (pipeline.Workbook, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = sniffDelimiter(data)

	header, err := reader.Read()
	if err == io.EOF {
		return pipeline.Workbook{Name: name}, nil
	}
	if err != nil {
		return pipeline.Workbook{}, fmt.Errorf("failed to read csv header of %s: %w", name, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return pipeline.Workbook{}, fmt.Errorf("failed to read csv file %s: %w", name, err)
	}

	sheet := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return pipeline.Workbook{
		Name:         name,
		Sheets:       []pipeline.Sheet{{Name: sheet, Header: header, Rows: rows}},
		DecimalComma: reader.Comma == ';',
	}, nil
}

// sniffDelimiter picks ';' for exports from locales that use a decimal
// comma; Decode then reads their numbers that way.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
