package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"

	"github.com/finpipe/statement-ledger/internal/domain"
)

// Parser reads statement spreadsheets (.xls and .xlsx) from disk.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a new Parser.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Supported reports whether the file name has an extension the parser can read.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xls", ".xlsx":
		return true
	default:
		return false
	}
}

// Parse reads the first sheet of the file and returns its data region.
// Unreadable or empty files yield domain.ErrNoData.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedStatement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := ReadRows(path)
	if err != nil {
		p.logger.Error().Err(err).Str("file", filepath.Base(path)).Msg("failed to read spreadsheet")
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNoData, err)
	}

	stmt, err := LocateRegion(rows)
	if err != nil {
		return nil, err
	}

	for _, w := range stmt.Warnings {
		p.logger.Warn().Str("file", filepath.Base(path)).Msg(w)
	}

	return stmt, nil
}

// ReadRows returns the cell text of the first sheet, row by row.
func ReadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found")
	}
	sheet := sheets[0]

	// Raw values keep amounts at full precision; display text would apply
	// the cell's number format (thousands separators, rounding, US dates).
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", sheet, err)
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dateStyles := make(map[int]bool)
	for i, row := range rows {
		for j, raw := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			if typ, err := f.GetCellType(sheet, cell); err != nil {
				return nil, fmt.Errorf("cell type of %s: %w", cell, err)
			} else if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
				continue
			}

			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("cell style of %s: %w", cell, err)
			}
			isDate, ok := dateStyles[styleID]
			if !ok {
				isDate = xlsxDateStyle(f, styleID)
				dateStyles[styleID] = isDate
			}
			if isDate {
				if date, ok := serialDate(v, date1904); ok {
					rows[i][j] = date
				}
			}
		}
	}

	return rows, nil
}

func xlsxDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	var custom string
	if style.CustomNumFmt != nil {
		custom = *style.CustomNumFmt
	}
	return isDateNumFmt(style.NumFmt, custom)
}

// readXLS recovers from panics inside the BIFF decoder, which indexes
// record slices without bounds checks on malformed files.
func readXLS(path string) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("decode xls: %v", r)
		}
	}()

	book, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("no sheets found")
	}

	for _, xlsRow := range sheet.GetRows() {
		if xlsRow == nil {
			rows = append(rows, nil)
			continue
		}
		var cells []string
		for _, col := range xlsRow.GetCols() {
			cells = append(cells, xlsCellText(&book, col))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// xlsCellText renders numeric cells from their float value, converting
// date-formatted serials. The decoder has no 1904 date system support.
func xlsCellText(book *xls.Workbook, cell structure.CellData) string {
	switch cell.GetType() {
	case "*record.Number", "*record.Rk":
		v := cell.GetFloat64()
		xf := book.GetXFbyIndex(cell.GetXFIndex())
		idx := xf.GetFormatIndex()
		format := book.GetFormatByIndex(idx)
		if isDateNumFmt(idx, format.String()) {
			if date, ok := serialDate(v, false); ok {
				return date
			}
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return cell.GetString()
	}
}

func serialDate(v float64, date1904 bool) (string, bool) {
	if v <= 0 {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(v, date1904)
	if err != nil {
		return "", false
	}
	return t.Format(domain.StatementDateLayout), true
}

// isDateNumFmt reports whether a number format renders a date. Built-in ids
// are checked first; custom codes are scanned for day or year tokens once
// literals, bracketed sections and escapes are removed.
func isDateNumFmt(id int, code string) bool {
	switch {
	case id >= 14 && id <= 17, id == 22, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	if code == "" {
		return false
	}

	var b strings.Builder
	quoted, bracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '[':
			bracket = true
		case c == ']':
			bracket = false
		case bracket:
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "dy")
}
