package parser

import (
	"strings"
	"time"

	"findash/internal/model"
)

// 日期解析支持的格式（按顺序尝试）
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"2006-01",
	"2006/01",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"02-Jan-06",
	"Jan 2006",
	"January 2006",
	"Jan-2006",
	"Jan-06",
	"Jan 06",
	"Jan. 2006",
	"01-2006",
	"1-2006",
}

// ParseDate 按固定格式列表解析日期文本
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// 月份名大小写不规范时，如 "JAN 2025"
	if len(s) >= 3 {
		norm := strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
		if norm != s {
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, norm); err == nil {
					return t, true
				}
			}
		}
	}
	return time.Time{}, false
}

// CellDate 严格日期转换：日期单元格或可解析的文本，数字不视为日期
func CellDate(c model.Cell) (time.Time, bool) {
	switch c.Kind {
	case model.CellDate:
		return c.Time, true
	case model.CellString:
		return ParseDate(c.Str)
	}
	return time.Time{}, false
}

// DateCandidates 列名含 date，或等于 month / period
func DateCandidates(t *model.Table) []string {
	out := []string{}
	for _, name := range t.ColumnNames() {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "date") || lower == "month" || lower == "period" {
			out = append(out, name)
		}
	}
	return out
}

// NormalizeDates 宽松归一化：候选列中能解析的文本转为日期，其余保持不变
// 返回副本，不修改输入。
func NormalizeDates(t *model.Table, candidates []string) *model.Table {
	if t == nil {
		return nil
	}
	out := t.Clone()
	if len(candidates) == 0 {
		candidates = DateCandidates(t)
	}
	for _, name := range candidates {
		col := t.ColumnIndex(name)
		if col < 0 {
			continue
		}
		for r := range out.Rows {
			if col >= len(out.Rows[r]) {
				continue
			}
			c := out.Rows[r][col]
			if c.Kind != model.CellString {
				continue
			}
			if ts, ok := ParseDate(c.Str); ok {
				out.Rows[r][col] = model.DateCell(ts)
			}
		}
	}
	return out
}

// MonthStart 所在月份的第一天（UTC）
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel 如 "Jan"
func MonthLabel(t time.Time) string {
	return t.Format("Jan")
}

// MonthYearLabel 如 "Jan 2025"
func MonthYearLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// ISODate 如 "2025-01-01"
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ISODates 批量转换
func ISODates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = ISODate(t)
	}
	return out
}

// MonthKey 如 "2025-01"
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
