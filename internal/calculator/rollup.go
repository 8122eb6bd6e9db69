package calculator

import (
	"sort"
	"time"

	"findash/internal/model"
	"findash/internal/parser"
)

// Agg 月内聚合函数
type Agg string

const (
	AggSum  Agg = "sum"
	AggMean Agg = "mean"
)

// FieldAgg 一个输出字段：行值为所列各列之和，再按 Func 在月内聚合
type FieldAgg struct {
	Name    string
	Columns []string
	Func    Agg
}

// RollupStats 分组统计；Excluded == TotalRows - sum(GroupSizes)
type RollupStats struct {
	TotalRows  int            `json:"total_rows"`
	Included   int            `json:"included"`
	Excluded   int            `json:"excluded"`
	GroupSizes map[string]int `json:"group_sizes"`
}

type monthBucket struct {
	count int
	sums  []float64
}

// Rollup 按自然月汇总
// 日期无法解析的行被排除；输出月份升序且连续，无数据的月份各字段为 0。
func Rollup(t *model.Table, dateCol string, aggs []FieldAgg) (*model.MonthlyFrame, RollupStats) {
	names := make([]string, len(aggs))
	for i, a := range aggs {
		names[i] = a.Name
	}
	frame := model.NewMonthlyFrame(names...)
	frame.Months = []time.Time{}
	stats := RollupStats{GroupSizes: map[string]int{}}
	if t == nil {
		return frame, stats
	}
	stats.TotalRows = t.Len()

	dateIdx := t.ColumnIndex(dateCol)
	if dateIdx < 0 {
		stats.Excluded = stats.TotalRows
		return frame, stats
	}

	colIdx := make([][]int, len(aggs))
	for i, a := range aggs {
		for _, c := range a.Columns {
			if idx := t.ColumnIndex(c); idx >= 0 {
				colIdx[i] = append(colIdx[i], idx)
			}
		}
	}

	buckets := map[time.Time]*monthBucket{}
	for r := 0; r < t.Len(); r++ {
		d, ok := parser.CellDate(t.Cell(r, dateIdx))
		if !ok {
			stats.Excluded++
			continue
		}
		m := parser.MonthStart(d)
		b := buckets[m]
		if b == nil {
			b = &monthBucket{sums: make([]float64, len(aggs))}
			buckets[m] = b
		}
		b.count++
		for i := range aggs {
			for _, c := range colIdx[i] {
				b.sums[i] += parser.ToFloat(t.Cell(r, c))
			}
		}
		stats.Included++
	}
	if len(buckets) == 0 {
		return frame, stats
	}

	months := make([]time.Time, 0, len(buckets))
	for m, b := range buckets {
		months = append(months, m)
		stats.GroupSizes[parser.MonthKey(m)] = b.count
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	for m := months[0]; !m.After(months[len(months)-1]); m = m.AddDate(0, 1, 0) {
		frame.Months = append(frame.Months, m)
		b := buckets[m]
		for i, a := range aggs {
			v := 0.0
			if b != nil {
				v = b.sums[i]
				if a.Func == AggMean && b.count > 0 {
					v /= float64(b.count)
				}
			}
			frame.Fields[a.Name] = append(frame.Fields[a.Name], v)
		}
	}
	return frame, stats
}
