package parser

import (
	"strings"

	"findash/internal/model"
)

// ColumnKind 值列的定位方式
type ColumnKind int

const (
	// ColumnsInherit 使用所在工作表的默认列定义
	ColumnsInherit ColumnKind = iota
	// ColumnsRange 固定的 [Start, End] 列区间
	ColumnsRange
	// ColumnsAfter 从 Start 列到最后一列
	ColumnsAfter
	// ColumnsDateHeaders 表头为日期的列
	ColumnsDateHeaders
	// ColumnsNamedHeaders 表头文本（或日期按 "Jan 06" 格式化后）等于 Names 的列
	ColumnsNamedHeaders
)

// ColumnSpec 值列定义；每种报表形态自带一份，不做推断
type ColumnSpec struct {
	Kind  ColumnKind
	Start int
	End   int
	Names []string
}

// Range 固定列区间
func Range(start, end int) ColumnSpec {
	return ColumnSpec{Kind: ColumnsRange, Start: start, End: end}
}

// After 从 start 列到最后一列
func After(start int) ColumnSpec {
	return ColumnSpec{Kind: ColumnsAfter, Start: start}
}

// DateHeaders 日期表头列
func DateHeaders() ColumnSpec {
	return ColumnSpec{Kind: ColumnsDateHeaders}
}

// NamedHeaders 按表头名称取列
func NamedHeaders(names ...string) ColumnSpec {
	return ColumnSpec{Kind: ColumnsNamedHeaders, Names: names}
}

// Resolve 解析出列下标与对应的期间标签
// 命名列缺失时下标为 -1，取值按 0 处理。
func (s ColumnSpec) Resolve(t *model.Table) ([]int, []string) {
	switch s.Kind {
	case ColumnsRange:
		cols := ColumnRange(s.Start, s.End)
		return cols, headerLabels(t, cols)
	case ColumnsAfter:
		cols := ColumnRange(s.Start, t.Width()-1)
		return cols, headerLabels(t, cols)
	case ColumnsDateHeaders:
		cols := []int{}
		labels := []string{}
		for i, h := range t.Header {
			if h.Kind == model.CellDate {
				cols = append(cols, i)
				labels = append(labels, MonthLabel(h.Time))
			}
		}
		return cols, labels
	case ColumnsNamedHeaders:
		cols := make([]int, len(s.Names))
		labels := make([]string, len(s.Names))
		for i, name := range s.Names {
			cols[i] = namedColumn(t, name)
			labels[i] = name
		}
		return cols, labels
	}
	return []int{}, []string{}
}

func namedColumn(t *model.Table, name string) int {
	want := NormalizeLabel(name)
	for i, h := range t.Header {
		if h.Kind == model.CellDate {
			if h.Time.Format("Jan 06") == want {
				return i
			}
			continue
		}
		if strings.EqualFold(NormalizeLabel(h.String()), want) {
			return i
		}
	}
	return -1
}

func headerLabels(t *model.Table, cols []int) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		h := t.HeaderCell(c)
		if h.Kind == model.CellDate {
			out[i] = MonthLabel(h.Time)
			continue
		}
		out[i] = NormalizeLabel(h.String())
	}
	return out
}
