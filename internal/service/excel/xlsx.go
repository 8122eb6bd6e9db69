package excel

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"findash/internal/model"
)

func readXLSX(path string) (*model.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, malformed("open xlsx", path, err)
	}
	defer func() { _ = f.Close() }()
	return workbookFromFile(f, path), nil
}

// WorkbookFromFile 把已打开的 excelize 工作簿转为内存表（测试与导入共用）
func WorkbookFromFile(f *excelize.File) *model.Workbook {
	return workbookFromFile(f, "")
}

func workbookFromFile(f *excelize.File, path string) *model.Workbook {
	wb := &model.Workbook{Path: path, Sheets: map[string]*model.Table{}}
	styles := newDateStyles(f)
	for _, name := range f.GetSheetList() {
		wb.SheetNames = append(wb.SheetNames, name)
		wb.Sheets[name] = readSheet(f, name, styles)
	}
	return wb
}

// readSheet 单个工作表读取失败时返回空表，不影响其他工作表
func readSheet(f *excelize.File, sheet string, styles *dateStyles) *model.Table {
	formatted, err := f.GetRows(sheet)
	if err != nil {
		return &model.Table{Name: sheet}
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		raw = formatted
	}

	rows := make([][]model.Cell, len(raw))
	for r := range raw {
		cells := make([]model.Cell, len(raw[r]))
		for c := range raw[r] {
			fv := raw[r][c]
			if r < len(formatted) && c < len(formatted[r]) {
				fv = formatted[r][c]
			}
			cells[c] = styles.cell(sheet, c+1, r+1, raw[r][c], fv)
		}
		rows[r] = cells
	}
	return buildTable(sheet, rows)
}

type dateStyles struct {
	f     *excelize.File
	cache map[int]bool
}

func newDateStyles(f *excelize.File) *dateStyles {
	return &dateStyles{f: f, cache: map[int]bool{}}
}

func (d *dateStyles) cell(sheet string, col, row int, raw, formatted string) model.Cell {
	if strings.TrimSpace(raw) == "" {
		return model.EmptyCell()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if formatted == "" {
			formatted = raw
		}
		return model.StringCell(formatted)
	}
	// 日期序列号总会被格式化成与原值不同的文本
	if formatted != raw && d.isDate(sheet, col, row) {
		if t, err := excelize.ExcelDateToTime(v, false); err == nil {
			return model.DateCell(t)
		}
	}
	return model.NumberCell(v)
}

func (d *dateStyles) isDate(sheet string, col, row int) bool {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	idx, err := d.f.GetCellStyle(sheet, axis)
	if err != nil {
		return false
	}
	if v, ok := d.cache[idx]; ok {
		return v
	}
	res := false
	if st, err := d.f.GetStyle(idx); err == nil && st != nil {
		res = isDateNumFmt(st.NumFmt)
		if !res && st.CustomNumFmt != nil {
			res = isDateFormatCode(*st.CustomNumFmt)
		}
	}
	d.cache[idx] = res
	return res
}

// isDateNumFmt 内置数字格式中的日期类 ID
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode 自定义格式串是否为日期（忽略引号文本与方括号段）
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == '\\':
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if strings.ContainsAny(s, "yd") {
		return true
	}
	return strings.Contains(s, "m") && !strings.ContainsAny(s, "hs")
}
