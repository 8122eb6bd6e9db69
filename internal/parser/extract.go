package parser

import (
	"strings"

	"findash/internal/model"
)

// Record 记录型工作表的一行（如各公司毛利）
type Record struct {
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values"`
}

// SheetResult 单个工作表的提取结果
// 缺失的指标只记录在 Missing 中，不影响同表其他指标。
type SheetResult struct {
	ID        string               `json:"id"`
	Found     bool                 `json:"found"`
	SheetName string               `json:"sheet_name,omitempty"`
	Labels    []string             `json:"labels"`
	Series    map[string][]float64 `json:"series"`
	Order     []string             `json:"order"`
	Missing   []string             `json:"missing"`
	Records   []Record             `json:"records"`
	Cells     map[string]float64   `json:"cells"`
	Rows      int                  `json:"rows"`
}

func newSheetResult(id string) *SheetResult {
	return &SheetResult{
		ID:      id,
		Labels:  []string{},
		Series:  map[string][]float64{},
		Order:   []string{},
		Missing: []string{},
		Records: []Record{},
		Cells:   map[string]float64{},
	}
}

// Get 指标序列；不存在时 ok=false
func (r *SheetResult) Get(key string) ([]float64, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.Series[key]
	return v, ok
}

// Values 指标序列，不存在时返回 nil（求和/取末值均按 0 处理）
func (r *SheetResult) Values(key string) []float64 {
	v, _ := r.Get(key)
	return v
}

// Cell 固定单元格取值，缺失为 0
func (r *SheetResult) Cell(key string) float64 {
	if r == nil {
		return 0
	}
	return r.Cells[key]
}

// HasData 工作表存在且至少提取到一项
func (r *SheetResult) HasData() bool {
	if r == nil || !r.Found {
		return false
	}
	return len(r.Series) > 0 || len(r.Records) > 0 || len(r.Cells) > 0
}

// ReportResult 一次报表提取的全部结果
type ReportResult struct {
	Shape  string                  `json:"shape"`
	Sheets map[string]*SheetResult `json:"sheets"`
	Order  []string                `json:"order"`
}

// Sheet 按 ID 取结果；不存在时返回空结果而不是 nil
func (r ReportResult) Sheet(id string) *SheetResult {
	if s, ok := r.Sheets[id]; ok {
		return s
	}
	return newSheetResult(id)
}

// ExtractReport 按报表形态提取工作簿；每个工作表、每项指标独立降级
func ExtractReport(wb *model.Workbook, shape ReportShape) ReportResult {
	res := ReportResult{Shape: shape.ID, Sheets: map[string]*SheetResult{}, Order: []string{}}
	for _, ss := range shape.Sheets {
		sr := newSheetResult(ss.ID)
		if name, ok := SelectSheet(wb, ss.Selector); ok {
			t, _ := wb.Sheet(name)
			sr.SheetName = name
			sr.Found = !t.Empty()
			if sr.Found {
				extractSheet(t, ss, sr)
			}
		}
		res.Sheets[ss.ID] = sr
		res.Order = append(res.Order, ss.ID)
	}
	return res
}

// ExtractSheet 对单个表执行规则（不做工作表选择）
func ExtractSheet(t *model.Table, ss SheetShape) *SheetResult {
	sr := newSheetResult(ss.ID)
	if t == nil {
		return sr
	}
	sr.SheetName = t.Name
	sr.Found = !t.Empty()
	if sr.Found {
		extractSheet(t, ss, sr)
	}
	return sr
}

// SelectSheet 按选择器找工作表名
func SelectSheet(wb *model.Workbook, sel SheetSelector) (string, bool) {
	if wb == nil || len(wb.SheetNames) == 0 {
		return "", false
	}
	if sel.Name != "" {
		for _, n := range wb.SheetNames {
			if n == sel.Name {
				return n, true
			}
		}
		for _, n := range wb.SheetNames {
			if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(sel.Name)) {
				return n, true
			}
		}
	}
	if len(sel.NameContains) > 0 {
		if n, ok := wb.FindSheet(sel.NameContains...); ok {
			return n, true
		}
	}
	if sel.Position > 0 && sel.Position <= len(wb.SheetNames) {
		return wb.SheetNames[sel.Position-1], true
	}
	if sel.FallbackFirst {
		return wb.SheetNames[0], true
	}
	return "", false
}

func extractSheet(t *model.Table, ss SheetShape, sr *SheetResult) {
	sr.Rows = t.Len()

	cols, labels := ss.Columns.Resolve(t)
	if len(ss.DefaultLabels) > 0 && len(cols) <= len(ss.DefaultLabels) {
		labels = append([]string(nil), ss.DefaultLabels[:len(cols)]...)
	}
	sr.Labels = labels

	resolve := func(spec ColumnSpec) []int {
		if spec.Kind == ColumnsInherit {
			return cols
		}
		c, _ := spec.Resolve(t)
		return c
	}

	for _, m := range ss.Metrics {
		vals, ok := LocateSeries(t, m.Label, m.LabelCol, resolve(m.Columns), m.Mode)
		if !ok {
			sr.Missing = append(sr.Missing, m.Key)
			continue
		}
		sr.put(m.Key, vals)
	}

	for _, sc := range ss.Scans {
		scanCols := resolve(sc.Columns)
		for r := 0; r < t.Len(); r++ {
			label := CellLabel(t.Cell(r, sc.LabelCol))
			if label == "" || !ContainsAny(label, sc.Keywords) {
				continue
			}
			if _, dup := sr.Series[label]; dup {
				continue
			}
			sr.put(label, RowValues(t, r, scanCols))
		}
	}

	if ss.Records != nil {
		sr.Records = extractRecords(t, ss.Records)
	}

	for _, c := range ss.Cells {
		cell, ok := t.CellAt(c.Ref)
		if !ok {
			sr.Missing = append(sr.Missing, c.Key)
			continue
		}
		sr.Cells[c.Key] = ToFloat(cell)
	}
}

func (r *SheetResult) put(key string, vals []float64) {
	r.Series[key] = vals
	r.Order = append(r.Order, key)
}

func extractRecords(t *model.Table, rule *RecordRule) []Record {
	out := []Record{}
	for r := 0; r < t.Len(); r++ {
		label := CellLabel(t.Cell(r, rule.LabelCol))
		if label == "" || skipLabel(label, rule.SkipLabels) {
			continue
		}
		rec := Record{Label: label, Values: make(map[string]float64, len(rule.Fields))}
		var others float64
		totalPresent := false
		textual := false
		for _, f := range rule.Fields {
			cell := t.Cell(r, f.Col)
			v, ok := NumericValue(cell)
			if !ok && !blankCell(cell) {
				textual = true
				break
			}
			if f.Key == rule.TotalKey {
				totalPresent = ok
			} else {
				others += v
			}
			rec.Values[f.Key] = v
		}
		// 非空单元格不是数字时视为子表头行
		if textual {
			continue
		}
		if rule.TotalKey != "" && !totalPresent {
			rec.Values[rule.TotalKey] = others
		}
		out = append(out, rec)
	}
	return out
}

func blankCell(c model.Cell) bool {
	return c.Kind == model.CellEmpty || (c.Kind == model.CellString && strings.TrimSpace(c.Str) == "")
}

func skipLabel(label string, skip []string) bool {
	for _, s := range skip {
		if strings.EqualFold(label, s) {
			return true
		}
	}
	return false
}
