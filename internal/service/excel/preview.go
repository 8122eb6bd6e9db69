package excel

import (
	"fmt"

	"findash/internal/model"
)

// PreviewData 上传后的表格预览
type PreviewData struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"preview"`
}

// Preview 列名与前 n 行；空表头记为 "Unnamed: i"
func Preview(t *model.Table, n int) PreviewData {
	out := PreviewData{Columns: []string{}, Rows: []map[string]any{}}
	if t == nil {
		return out
	}
	out.Columns = PreviewColumns(t)
	if n > t.Len() {
		n = t.Len()
	}
	for r := 0; r < n; r++ {
		row := make(map[string]any, len(out.Columns))
		for c, name := range out.Columns {
			row[name] = t.Cell(r, c).Value()
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// PreviewColumns 映射界面使用的列名
func PreviewColumns(t *model.Table) []string {
	names := t.ColumnNames()
	width := t.Width()
	cols := make([]string, width)
	seen := map[string]int{}
	for i := 0; i < width; i++ {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if k, dup := seen[name]; dup {
			seen[name] = k + 1
			name = fmt.Sprintf("%s.%d", name, k+1)
		} else {
			seen[name] = 0
		}
		cols[i] = name
	}
	return cols
}
