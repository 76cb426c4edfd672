// Package export liste ekranlarının Excel (xlsx) çıktısı.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet tek sayfalık tablo
type Sheet struct {
	Name    string
	Headers []string
	Widths  []float64 // sütun genişlikleri, opsiyonel
	Rows    [][]any
}

// Build tabloyu xlsx dosyasına çevirir.
func Build(s Sheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(s.Name)
	if err != nil {
		return nil, fmt.Errorf("çalışma sayfası oluşturulamadı: %w", err)
	}
	f.SetActiveSheet(index)
	if s.Name != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range s.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(s.Name, cell, h); err != nil {
			return nil, err
		}
	}

	for r, row := range s.Rows {
		for i, v := range row {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(s.Name, cell, v); err != nil {
				return nil, err
			}
		}
	}

	for i, w := range s.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetColWidth(s.Name, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx yazılamadı: %w", err)
	}
	return buf, nil
}

// Send tabloyu indirme olarak gönderir: <prefix>_YYYYMMDD.xlsx
func Send(c *fiber.Ctx, prefix string, s Sheet) error {
	buf, err := Build(s)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, ContentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=\"%s_%s.xlsx\"", prefix, time.Now().Format("20060102")))
	return c.Send(buf.Bytes())
}
