package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Dataset 单个导出工作表
type Dataset struct {
	Sheet   string
	Headers []string
	Rows    [][]any
	Widths  map[int]float64
}

// DatasetExporter 把数据集写成带样式的 XLSX
type DatasetExporter struct {
	HeaderColor string
	StripeColor string
}

// NewDatasetExporter 创建导出器
func NewDatasetExporter() *DatasetExporter {
	return &DatasetExporter{HeaderColor: "#E2E8F0", StripeColor: "#F8FAFC"}
}

// Build 每个数据集一个工作表；表头冻结并加自动筛选
func (e *DatasetExporter) Build(sets ...Dataset) (*excelize.File, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("no dataset to export")
	}
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{e.HeaderColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	stripeStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{e.StripeColor}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create row style: %w", err)
	}

	for i, ds := range sets {
		sheet := ds.Sheet
		if sheet == "" {
			sheet = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := writeDataset(f, sheet, ds, headerStyle, stripeStyle); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}
	return f, nil
}

// Write 构建并写出到 w
func (e *DatasetExporter) Write(w io.Writer, sets ...Dataset) error {
	f, err := e.Build(sets...)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

func writeDataset(f *excelize.File, sheet string, ds Dataset, headerStyle, stripeStyle int) error {
	header := make([]any, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(ds.Headers) == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(len(ds.Headers))
	if err != nil {
		return err
	}
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)

	for i, row := range ds.Rows {
		r := i + 2
		start := fmt.Sprintf("A%d", r)
		vals := append([]any(nil), row...)
		if err := f.SetSheetRow(sheet, start, &vals); err != nil {
			return err
		}
		if i%2 == 1 {
			_ = f.SetCellStyle(sheet, start, fmt.Sprintf("%s%d", lastCol, r), stripeStyle)
		}
	}

	for col := 1; col <= len(ds.Headers); col++ {
		name, _ := excelize.ColumnNumberToName(col)
		width := 16.0
		if w, ok := ds.Widths[col-1]; ok {
			width = w
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, len(ds.Rows)+1), nil)
}
