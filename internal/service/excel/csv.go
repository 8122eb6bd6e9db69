package excel

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"findash/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV 先按 UTF-8 读取，非法字节时退回 Latin-1
func readCSV(path string) (*model.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newLoadError("read csv", path, "", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newLoadError("read csv", path, "", ErrEmptyFile)
	}

	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		r = transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, malformed("read csv", path, err)
	}

	rows := make([][]model.Cell, 0, len(records))
	for i, rec := range records {
		cells := make([]model.Cell, len(rec))
		for j, v := range rec {
			if i == 0 {
				cells[j] = headerCell(v)
				continue
			}
			cells[j] = inferCell(v)
		}
		rows = append(rows, cells)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t := buildTable(name, rows)
	if t.Empty() {
		return nil, newLoadError("read csv", path, "", ErrEmptyFile)
	}
	return t, nil
}

func headerCell(v string) model.Cell {
	v = strings.TrimSpace(v)
	if v == "" {
		return model.EmptyCell()
	}
	return model.StringCell(v)
}

var missingMarkers = map[string]struct{}{
	"nan": {}, "na": {}, "n/a": {}, "#n/a": {}, "null": {}, "none": {}, "nat": {},
}

// inferCell 文本单元格类型推断：整数 -> 浮点 -> 字符串
func inferCell(v string) model.Cell {
	s := strings.TrimSpace(v)
	if s == "" {
		return model.EmptyCell()
	}
	if _, ok := missingMarkers[strings.ToLower(s)]; ok {
		return model.EmptyCell()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.NumberCell(float64(i))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return model.NumberCell(f)
	}
	return model.StringCell(s)
}
