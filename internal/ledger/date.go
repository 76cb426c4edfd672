package ledger

import (
	"strings"
	"time"

	"magaza-backend/internal/apperr"
)

const dateOnly = "2006-01-02"

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ResolveDate hareket tarihini çözer. Sadece "YYYY-MM-DD" verilirse o güne
// şimdiki saat eklenir (aynı gündeki hareketlerin sırası korunur); tam zaman
// damgası olduğu gibi kullanılır; boş değer şimdiki zamandır.
func ResolveDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now, nil
	}

	if d, err := time.ParseInLocation(dateOnly, input, now.Location()); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(),
			now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location()), nil
	}

	if t, err := time.Parse(time.RFC3339Nano, input); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, apperr.ValidationField("date", "Tarih formatı 'YYYY-MM-DD' veya ISO 8601 olmalı")
}
