package model

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CellKind 单元格值类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellDate
)

// Cell 表格单元格（异构值）
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Time time.Time
}

func EmptyCell() Cell           { return Cell{Kind: CellEmpty} }
func StringCell(s string) Cell  { return Cell{Kind: CellString, Str: s} }
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Num: v} }
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

// IsEmpty 空单元格或仅含空白字符
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellString:
		return strings.TrimSpace(c.Str) == ""
	}
	return false
}

// String 单元格的文本形式；日期按 ISO 输出
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return ""
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Value 返回可 JSON 序列化的值（日期转为字符串）
func (c Cell) Value() interface{} {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return nil
		}
		return c.Num
	case CellDate:
		return c.String()
	}
	return nil
}

// Table 原始表格：首行为表头，其余为数据行
// 行列下标只在一次加载内稳定，语义由定位器解析。
type Table struct {
	Name     string
	Header   []Cell
	Rows     [][]Cell
	FirstRow int // 表头在原工作表中的行号（1 起）；0 视为 1
}

// Len 数据行数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width 最大列数（表头与数据行取最大）
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	w := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Empty 没有表头也没有数据
func (t *Table) Empty() bool {
	return t == nil || (len(t.Header) == 0 && len(t.Rows) == 0)
}

// Cell 取数据单元格，越界返回空单元格
func (t *Table) Cell(row, col int) Cell {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 {
		return EmptyCell()
	}
	r := t.Rows[row]
	if col >= len(r) {
		return EmptyCell()
	}
	return r[col]
}

// HeaderCell 取表头单元格，越界返回空单元格
func (t *Table) HeaderCell(col int) Cell {
	if t == nil || col < 0 || col >= len(t.Header) {
		return EmptyCell()
	}
	return t.Header[col]
}

// ColumnNames 表头文本
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Header))
	for i, h := range t.Header {
		out[i] = strings.TrimSpace(h.String())
	}
	return out
}

// ColumnIndex 先精确匹配，再忽略大小写与首尾空白；找不到返回 -1
func (t *Table) ColumnIndex(name string) int {
	if t == nil || name == "" {
		return -1
	}
	names := t.ColumnNames()
	for i, n := range names {
		if n == name {
			return i
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if strings.ToLower(n) == want {
			return i
		}
	}
	return -1
}

// CellAt 按原工作表的 A1 引用取值
func (t *Table) CellAt(ref string) (Cell, bool) {
	if t == nil {
		return EmptyCell(), false
	}
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return EmptyCell(), false
	}
	first := t.FirstRow
	if first < 1 {
		first = 1
	}
	row = row - first + 1
	if row < 1 {
		return EmptyCell(), false
	}
	if row == 1 {
		if col-1 >= len(t.Header) {
			return EmptyCell(), false
		}
		return t.HeaderCell(col - 1), true
	}
	dataRow := row - 2
	if dataRow >= len(t.Rows) || col-1 >= len(t.Rows[dataRow]) {
		return EmptyCell(), false
	}
	return t.Cell(dataRow, col-1), true
}

// Clone 深拷贝行切片（单元格为值类型）
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Name:     t.Name,
		Header:   append([]Cell(nil), t.Header...),
		Rows:     make([][]Cell, len(t.Rows)),
		FirstRow: t.FirstRow,
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]Cell(nil), r...)
	}
	return out
}

// Workbook 多工作表输入
type Workbook struct {
	Path       string
	SheetNames []string
	Sheets     map[string]*Table
}

// Sheet 按名称取工作表
func (w *Workbook) Sheet(name string) (*Table, bool) {
	if w == nil {
		return nil, false
	}
	t, ok := w.Sheets[name]
	return t, ok
}

// SheetAt 按位置取工作表
func (w *Workbook) SheetAt(i int) (*Table, bool) {
	if w == nil || i < 0 || i >= len(w.SheetNames) {
		return nil, false
	}
	return w.Sheet(w.SheetNames[i])
}

// FindSheet 第一个名称（小写）包含任一关键词的工作表名
func (w *Workbook) FindSheet(keywords ...string) (string, bool) {
	if w == nil {
		return "", false
	}
	for _, name := range w.SheetNames {
		lower := strings.ToLower(name)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return name, true
			}
		}
	}
	return "", false
}
