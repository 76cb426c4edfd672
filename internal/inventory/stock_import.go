package inventory

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
)

// ImportRow mal kabul dosyasındaki tek satır.
type ImportRow struct {
	Line     int
	Key      string // barkod veya ürün adı
	Quantity int
}

type ImportResult struct {
	Applied   int                    `json:"applied"`
	Movements []models.StockMovement `json:"movements"`
	Unmatched []string               `json:"unmatched"`
}

var turkishASCII = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

var sizeSuffix = regexp.MustCompile(`\s+[\d.,]+\s*(kg|gr|lt|ml|g|l|cm|mm)$`)

// normalizeProductName ürün adını karşılaştırma için sadeleştirir:
// Türkçe karakter, büyük/küçük harf ve sondaki ölçü bilgisi ("1KG", "40 ml") yok sayılır.
// Örn: "ÇANTA DERİ 40 CM" -> "canta deri"
func normalizeProductName(s string) string {
	n := strings.ToLower(turkishASCII.Replace(strings.TrimSpace(s)))
	n = sizeSuffix.ReplaceAllString(n, "")
	return strings.Join(strings.Fields(n), " ")
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := normalizeProductName(row[0])
	return strings.Contains(first, "barkod") || strings.Contains(first, "urun") || strings.Contains(first, "product")
}

// ParseImportSheet ilk sayfadaki "barkod/ürün adı | miktar" satırlarını okur.
// Başlık satırı varsa atlanır, boş satırlar yok sayılır.
func ParseImportSheet(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.ValidationField("file", "Excel dosyası okunamadı")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.ValidationField("file", "Excel dosyasında sayfa bulunamadı")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.ValidationField("file", "Sayfa okunamadı")
	}

	start := 0
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		start = 1
	}

	out := make([]ImportRow, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		line := i + 1
		if len(row) < 2 {
			return nil, apperr.ValidationField("file", fmt.Sprintf("Satır %d: miktar eksik", line))
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || qty == 0 {
			return nil, apperr.ValidationField("file", fmt.Sprintf("Satır %d: miktar sıfırdan farklı tam sayı olmalı", line))
		}
		out = append(out, ImportRow{Line: line, Key: strings.TrimSpace(row[0]), Quantity: qty})
	}
	if len(out) == 0 {
		return nil, apperr.ValidationField("file", "Excel dosyası boş")
	}
	return out, nil
}

// Import satırları aktif ürünlerle barkod, sonra normalize ad üzerinden eşleştirir
// ve eşleşenleri tek transaction'da stok hareketi olarak yazar. Eşleşmeyen satırlar
// sonuçta listelenir; herhangi bir satır stoğu eksiye düşürürse hiçbiri yazılmaz.
func (s *StockService) Import(ctx context.Context, rows []ImportRow, reason string, actor audit.Actor) (*ImportResult, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "Excel mal kabul"
	}
	res := &ImportResult{Movements: []models.StockMovement{}, Unmatched: []string{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if err := tx.Where("is_active = ?", true).Find(&products).Error; err != nil {
			return err
		}
		byBarcode := make(map[string]uint, len(products))
		byName := make(map[string]uint, len(products))
		for _, p := range products {
			if p.Barcode != nil {
				byBarcode[*p.Barcode] = p.ID
			}
			byName[normalizeProductName(p.Name)] = p.ID
		}

		for _, r := range rows {
			id, ok := byBarcode[r.Key]
			if !ok {
				id, ok = byName[normalizeProductName(r.Key)]
			}
			if !ok {
				res.Unmatched = append(res.Unmatched, fmt.Sprintf("Satır %d: %s", r.Line, r.Key))
				continue
			}
			mv, err := ApplyStockChange(tx, StockChange{
				ProductID: id,
				Quantity:  r.Quantity,
				Type:      models.StockMovementAdjustment,
				Reason:    reason,
				UserID:    actor.IDPtr(),
			})
			if err != nil {
				return err
			}
			res.Movements = append(res.Movements, *mv)
		}
		res.Applied = len(res.Movements)
		if res.Applied == 0 {
			return nil
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityStockMovement,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Excel'den stok girişi: %d satır işlendi, %d eşleşmedi", res.Applied, len(res.Unmatched)),
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Stok dosyası işlenemedi")
	}
	return res, nil
}
