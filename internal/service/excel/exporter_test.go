package excel_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"findash/internal/service/excel"
)

func TestDatasetExporterWritesSheets(t *testing.T) {
	t.Parallel()

	exp := excel.NewDatasetExporter()
	var buf bytes.Buffer
	err := exp.Write(&buf,
		excel.Dataset{
			Sheet:   "Employment",
			Headers: []string{"Month", "W2", "C2C"},
			Rows:    [][]any{{"Jan", 10, 3}, {"Feb", 11, 4}},
		},
		excel.Dataset{
			Sheet:   "Margin",
			Headers: []string{"Company", "Total"},
			Rows:    [][]any{{"Techgene", 220.5}},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Employment", "Margin"}, f.GetSheetList())

	rows, err := f.GetRows("Employment")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Month", "W2", "C2C"}, rows[0])
	assert.Equal(t, []string{"Feb", "11", "4"}, rows[2])

	v, err := f.GetCellValue("Margin", "B2")
	require.NoError(t, err)
	assert.Equal(t, "220.5", v)
}

func TestDatasetExporterRequiresDataset(t *testing.T) {
	t.Parallel()

	_, err := excel.NewDatasetExporter().Build()
	assert.Error(t, err)
}
