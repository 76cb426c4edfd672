package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/models"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// DefaultCount period için varsayılan nokta sayısı.
func (p Period) DefaultCount() int {
	switch p {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	default:
		return 7
	}
}

func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

const maxChartPoints = 366

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type Summary struct {
	TodaySaleCount   int64           `json:"todaySaleCount"`
	TodaySaleTotal   decimal.Decimal `json:"todaySaleTotal"`
	TotalReceivables decimal.Decimal `json:"totalReceivables"` // müşterilerin mağazaya borcu
	TotalStoreDebt   decimal.Decimal `json:"totalStoreDebt"`   // mağazanın müşterilere borcu
	LowStockCount    int64           `json:"lowStockCount"`
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	db := s.db.WithContext(ctx)
	today := startOfDay(s.now())
	out := Summary{
		TodaySaleTotal:   decimal.Zero,
		TotalReceivables: decimal.Zero,
		TotalStoreDebt:   decimal.Zero,
	}

	var totals []decimal.Decimal
	if err := db.Model(&models.Sale{}).
		Where("sale_date >= ? AND sale_date < ?", today, today.AddDate(0, 0, 1)).
		Pluck("total_amount", &totals).Error; err != nil {
		return nil, apperr.Internal("Günlük satışlar hesaplanamadı", err)
	}
	out.TodaySaleCount = int64(len(totals))
	for _, t := range totals {
		out.TodaySaleTotal = out.TodaySaleTotal.Add(t)
	}

	var balances []decimal.Decimal
	if err := db.Model(&models.Customer{}).
		Where("is_active = ? AND balance <> 0", true).
		Pluck("balance", &balances).Error; err != nil {
		return nil, apperr.Internal("Cari bakiyeler hesaplanamadı", err)
	}
	for _, b := range balances {
		if b.IsPositive() {
			out.TotalReceivables = out.TotalReceivables.Add(b)
		} else {
			out.TotalStoreDebt = out.TotalStoreDebt.Add(b.Neg())
		}
	}

	if err := db.Model(&models.Product{}).
		Where("is_active = ? AND current_stock <= min_stock", true).
		Count(&out.LowStockCount).Error; err != nil {
		return nil, apperr.Internal("Düşük stok sayısı hesaplanamadı", err)
	}
	return &out, nil
}

type ChartPoint struct {
	Label  string          `json:"label"` // gün / hafta başı (pazartesi) / ay başı
	Cash   decimal.Decimal `json:"cash"`
	Card   decimal.Decimal `json:"card"`
	Credit decimal.Decimal `json:"credit"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

type ChartTotals struct {
	Cash   decimal.Decimal `json:"cash"`
	Card   decimal.Decimal `json:"card"`
	Credit decimal.Decimal `json:"credit"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

type Chart struct {
	Period      Period       `json:"period"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Points      []ChartPoint `json:"points"`
	GrandTotals ChartTotals  `json:"grandTotals"`
}

// bucketStart t'nin ait olduğu dilimin başlangıcı. Haftalar pazartesi başlar.
func bucketStart(p Period, t time.Time) time.Time {
	d := startOfDay(t)
	switch p {
	case PeriodWeekly:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	default:
		return d
	}
}

func step(p Period, t time.Time, n int) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7*n)
	case PeriodMonthly:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// SalesChart son count dilimdeki satışları ödeme tipine göre toplar.
// Satışı olmayan dilimler de sıfır değerle döner.
func (s *Service) SalesChart(ctx context.Context, period Period, count int) (*Chart, error) {
	if !period.Valid() {
		return nil, apperr.ValidationField("period", "period daily, weekly veya monthly olmalı")
	}
	if count <= 0 {
		count = period.DefaultCount()
	}
	if count > maxChartPoints {
		return nil, apperr.ValidationField("count", "count en fazla 366 olabilir")
	}

	last := bucketStart(period, s.now())
	start := step(period, last, -(count - 1))
	end := step(period, last, 1)

	var sales []models.Sale
	if err := s.db.WithContext(ctx).
		Select("id", "sale_date", "payment_method", "total_amount").
		Where("sale_date >= ? AND sale_date < ?", start, end).
		Find(&sales).Error; err != nil {
		return nil, apperr.Internal("Satış grafiği hesaplanamadı", err)
	}

	points := make([]ChartPoint, count)
	index := make(map[time.Time]int, count)
	for i := 0; i < count; i++ {
		b := step(period, start, i)
		index[b] = i
		points[i] = ChartPoint{
			Label:  b.Format("2006-01-02"),
			Cash:   decimal.Zero,
			Card:   decimal.Zero,
			Credit: decimal.Zero,
			Total:  decimal.Zero,
		}
	}

	grand := ChartTotals{Cash: decimal.Zero, Card: decimal.Zero, Credit: decimal.Zero, Total: decimal.Zero}
	loc := s.now().Location()
	for _, sale := range sales {
		i, ok := index[bucketStart(period, sale.SaleDate.In(loc))]
		if !ok {
			continue
		}
		pt := &points[i]
		switch sale.PaymentMethod {
		case models.PaymentCash:
			pt.Cash = pt.Cash.Add(sale.TotalAmount)
			grand.Cash = grand.Cash.Add(sale.TotalAmount)
		case models.PaymentCard:
			pt.Card = pt.Card.Add(sale.TotalAmount)
			grand.Card = grand.Card.Add(sale.TotalAmount)
		case models.PaymentCredit:
			pt.Credit = pt.Credit.Add(sale.TotalAmount)
			grand.Credit = grand.Credit.Add(sale.TotalAmount)
		}
		pt.Total = pt.Total.Add(sale.TotalAmount)
		pt.Count++
		grand.Total = grand.Total.Add(sale.TotalAmount)
		grand.Count++
	}

	return &Chart{
		Period:      period,
		From:        start.Format("2006-01-02"),
		To:          end.AddDate(0, 0, -1).Format("2006-01-02"),
		Points:      points,
		GrandTotals: grand,
	}, nil
}
