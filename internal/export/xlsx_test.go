package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildWritesHeadersAndRows(t *testing.T) {
	buf, err := Build(Sheet{
		Name:    "Ürünler",
		Headers: []string{"Ad", "Barkod", "Stok"},
		Widths:  []float64{30, 16, 8},
		Rows: [][]any{
			{"Spor ayakkabı", "8681000100000", 5},
			{"Çanta", "", 0},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ürünler"}, f.GetSheetList())

	rows, err := f.GetRows("Ürünler")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Ad", "Barkod", "Stok"}, rows[0])
	assert.Equal(t, []string{"Spor ayakkabı", "8681000100000", "5"}, rows[1])
	assert.Equal(t, "Çanta", rows[2][0])
}
