package excel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"findash/internal/model"
)

// DefaultSheetHints 单表场景下优先选择的工作表关键词
var DefaultSheetHints = []string{"consolidated", "data", "placement", "summary"}

// MarginSheetKeywords 毛利工作表关键词
var MarginSheetKeywords = []string{"gross", "margin"}

// Loader 表格加载器（CSV / XLSX / XLS）
type Loader struct {
	hints []string
}

// NewLoader 创建加载器；未指定关键词时使用默认值
func NewLoader(hints ...string) *Loader {
	if len(hints) == 0 {
		hints = DefaultSheetHints
	}
	return &Loader{hints: hints}
}

// Hints 单表选择关键词
func (l *Loader) Hints() []string {
	return l.hints
}

// SheetInfo 工作表概要
type SheetInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}

// LoadWorkbook 读取全部工作表；CSV 视为单表工作簿
func (l *Loader) LoadWorkbook(path string) (*model.Workbook, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt":
		t, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return &model.Workbook{
			Path:       path,
			SheetNames: []string{t.Name},
			Sheets:     map[string]*model.Table{t.Name: t},
		}, nil
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	default:
		return nil, newLoadError("load", path, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext))
	}
}

// Load 读取单个“最合适”的工作表
func (l *Loader) Load(path string) (*model.Table, error) {
	wb, err := l.LoadWorkbook(path)
	if err != nil {
		return nil, err
	}
	name := PickSheet(wb.SheetNames, l.hints)
	t, ok := wb.Sheet(name)
	if !ok {
		return nil, newLoadError("load", path, name, ErrNotFound)
	}
	if t.Empty() {
		return nil, newLoadError("load", path, name, ErrEmptyFile)
	}
	return t, nil
}

// Sheets 工作簿的工作表列表
func Sheets(wb *model.Workbook) []SheetInfo {
	if wb == nil {
		return []SheetInfo{}
	}
	out := make([]SheetInfo, 0, len(wb.SheetNames))
	for _, name := range wb.SheetNames {
		t, _ := wb.Sheet(name)
		out = append(out, SheetInfo{Name: name, RowCount: t.Len()})
	}
	return out
}

// MarginSheet 名称含 gross / margin 的工作表
func MarginSheet(wb *model.Workbook) (*model.Table, bool) {
	name, ok := wb.FindSheet(MarginSheetKeywords...)
	if !ok {
		return nil, false
	}
	return wb.Sheet(name)
}

func checkFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return newLoadError("stat", path, "", ErrNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newLoadError("stat", path, "", ErrNotFound)
		}
		return newLoadError("stat", path, "", err)
	}
	if info.IsDir() {
		return newLoadError("stat", path, "", ErrNotFound)
	}
	if info.Size() == 0 {
		return newLoadError("stat", path, "", ErrEmptyFile)
	}
	return nil
}

// buildTable 跳过开头的空行，首个非空行作为表头
func buildTable(name string, rows [][]model.Cell) *model.Table {
	t := &model.Table{Name: name, FirstRow: 1}

	start := 0
	for start < len(rows) && rowIsBlank(rows[start]) {
		start++
	}
	end := len(rows)
	for end > start && rowIsBlank(rows[end-1]) {
		end--
	}
	if start >= end {
		return t
	}

	t.FirstRow = start + 1
	t.Header = trimTrailingEmpty(rows[start])
	for _, r := range rows[start+1 : end] {
		t.Rows = append(t.Rows, trimTrailingEmpty(r))
	}
	return t
}

func rowIsBlank(cells []model.Cell) bool {
	for _, c := range cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func trimTrailingEmpty(cells []model.Cell) []model.Cell {
	n := len(cells)
	for n > 0 && cells[n-1].IsEmpty() {
		n--
	}
	return cells[:n]
}
