package parser

import (
	"strings"

	"findash/internal/model"
)

// MatchMode 行标签匹配方式
type MatchMode int

const (
	// MatchExact 去除首尾空白后区分大小写的完全匹配
	MatchExact MatchMode = iota
	// MatchExactFold 去除首尾空白后忽略大小写的完全匹配
	MatchExactFold
	// MatchContains 忽略大小写的子串匹配
	MatchContains
)

func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchExactFold:
		return "exact_fold"
	case MatchContains:
		return "contains"
	}
	return "unknown"
}

// Matches 单元格文本是否命中标签
func (m MatchMode) Matches(cell, label string) bool {
	cell = NormalizeLabel(cell)
	label = NormalizeLabel(label)
	if cell == "" || label == "" {
		return false
	}
	switch m {
	case MatchExact:
		return cell == label
	case MatchExactFold:
		return strings.EqualFold(cell, label)
	case MatchContains:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(label))
	}
	return false
}

// LocateRow 自上而下查找第一条标签命中的数据行
func LocateRow(t *model.Table, label string, labelCol int, mode MatchMode) (int, bool) {
	if t == nil || labelCol < 0 {
		return -1, false
	}
	for r := 0; r < t.Len(); r++ {
		if mode.Matches(CellLabel(t.Cell(r, labelCol)), label) {
			return r, true
		}
	}
	return -1, false
}

// RowValues 取指定列的数值；非数值与越界单元格记为 0
func RowValues(t *model.Table, row int, cols []int) []float64 {
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = ToFloat(t.Cell(row, c))
	}
	return out
}

// LocateSeries 第一条命中行在给定列上的数值序列
// 没有命中时返回 (nil, false)，而不是补 0 的序列。
func LocateSeries(t *model.Table, label string, labelCol int, cols []int, mode MatchMode) ([]float64, bool) {
	row, ok := LocateRow(t, label, labelCol, mode)
	if !ok {
		return nil, false
	}
	return RowValues(t, row, cols), true
}

// ColumnRange [start, end] 闭区间的列下标
func ColumnRange(start, end int) []int {
	if end < start {
		return []int{}
	}
	out := make([]int, 0, end-start+1)
	for c := start; c <= end; c++ {
		out = append(out, c)
	}
	return out
}
