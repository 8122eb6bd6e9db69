package excel

import (
	"fmt"

	"github.com/extrame/xls"

	"findash/internal/model"
)

var openXLS = func(path string) (*xls.WorkBook, error) {
	return xls.Open(path, "utf-8")
}

// readXLS 旧版 .xls；日期单元格以格式化文本返回，交给日期归一化处理
func readXLS(path string) (wb *model.Workbook, err error) {
	defer func() {
		// 损坏的 BIFF 文件会在库内部 panic
		if r := recover(); r != nil {
			wb = nil
			err = malformed("open xls", path, fmt.Errorf("%v", r))
		}
	}()

	book, err := openXLS(path)
	if err != nil {
		return nil, malformed("open xls", path, err)
	}

	wb = &model.Workbook{Path: path, Sheets: map[string]*model.Table{}}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		rows := make([][]model.Cell, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]model.Cell, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, inferCell(row.Col(c)))
			}
			rows = append(rows, cells)
		}
		wb.SheetNames = append(wb.SheetNames, sheet.Name)
		wb.Sheets[sheet.Name] = buildTable(sheet.Name, rows)
	}
	return wb, nil
}
