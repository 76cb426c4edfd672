// Package barcode kategori bazlı EAN-13 barkod üretimi ve doğrulaması.
//
// Barkod yapısı: ülke kodu (3) + firma kodu (3) + kategori kodu (2) +
// benzersiz id (4) + kontrol hanesi (1).
package barcode

import (
	"errors"
	"fmt"
)

const (
	CountryCode = "868"
	CompanyCode = "100"

	Length       = 13
	uniqueIDSpan = 10000
)

var (
	ErrInvalidLength       = errors.New("barkod gövdesi 12 haneli sayı olmalı")
	ErrInvalidBarcode      = errors.New("geçersiz EAN-13 barkodu")
	ErrInvalidCategoryCode = errors.New("kategori kodu 2 haneli olmalı")
)

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CalculateCheckDigit ilk 12 haneden EAN-13 kontrol hanesini hesaplar.
// Çift indeksler 1, tek indeksler 3 ile çarpılır.
func CalculateCheckDigit(first12 string) (int, error) {
	if len(first12) != Length-1 || !isDigits(first12) {
		return 0, ErrInvalidLength
	}
	sum := 0
	for i := 0; i < len(first12); i++ {
		d := int(first12[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return (10 - sum%10) % 10, nil
}

// ValidateEAN13 13 haneli ve kontrol hanesi doğru olan barkodları kabul eder.
func ValidateEAN13(code string) bool {
	if len(code) != Length || !isDigits(code) {
		return false
	}
	check, err := CalculateCheckDigit(code[:Length-1])
	if err != nil {
		return false
	}
	return int(code[Length-1]-'0') == check
}

// Compose kategori kodu ve benzersiz id'den kontrol haneli barkod oluşturur.
func Compose(categoryCode string, uniqueID int) (string, error) {
	if len(categoryCode) != 2 || !isDigits(categoryCode) {
		return "", ErrInvalidCategoryCode
	}
	if uniqueID < 0 || uniqueID >= uniqueIDSpan {
		return "", fmt.Errorf("benzersiz id 0-%d aralığında olmalı: %d", uniqueIDSpan-1, uniqueID)
	}
	body := fmt.Sprintf("%s%s%s%04d", CountryCode, CompanyCode, categoryCode, uniqueID)
	check, err := CalculateCheckDigit(body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", body, check), nil
}

// Parts çözümlenmiş barkod parçaları
type Parts struct {
	CountryCode  string `json:"countryCode"`
	CompanyCode  string `json:"companyCode"`
	CategoryCode string `json:"categoryCode"`
	UniqueID     string `json:"uniqueId"`
	CheckDigit   int    `json:"checkDigit"`
}

// Decode geçerli bir barkodu parçalarına ayırır.
func Decode(code string) (Parts, error) {
	if !ValidateEAN13(code) {
		return Parts{}, ErrInvalidBarcode
	}
	return Parts{
		CountryCode:  code[0:3],
		CompanyCode:  code[3:6],
		CategoryCode: code[6:8],
		UniqueID:     code[8:12],
		CheckDigit:   int(code[12] - '0'),
	}, nil
}

// IsStoreBarcode barkodun bu mağazanın ülke/firma önekiyle üretilip üretilmediğini söyler.
func IsStoreBarcode(code string) bool {
	p, err := Decode(code)
	return err == nil && p.CountryCode == CountryCode && p.CompanyCode == CompanyCode
}

// Format barkodu okunabilir gruplara ayırır: "868 100 01 0000 0".
// 13 haneli olmayan değerler olduğu gibi döner.
func Format(code string) string {
	if len(code) != Length {
		return code
	}
	return fmt.Sprintf("%s %s %s %s %s", code[0:3], code[3:6], code[6:8], code[8:12], code[12:])
}
