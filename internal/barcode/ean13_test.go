package barcode

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCheckDigitFixtures(t *testing.T) {
	cases := map[string]int{
		"868100010000": 0,
		"590123412345": 7,
		"400638133393": 1,
		"000000000000": 0,
	}
	for body, want := range cases {
		got, err := CalculateCheckDigit(body)
		require.NoError(t, err, body)
		assert.Equal(t, want, got, body)
	}
}

func TestCalculateCheckDigitRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "86810001000", "8681000100000", "86810001000a", " 86810001000"} {
		_, err := CalculateCheckDigit(bad)
		assert.ErrorIs(t, err, ErrInvalidLength, bad)
	}
}

func TestValidateEAN13RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		body := fmt.Sprintf("%012d", rng.Int63n(1_000_000_000_000))
		check, err := CalculateCheckDigit(body)
		require.NoError(t, err)

		code := fmt.Sprintf("%s%d", body, check)
		assert.True(t, ValidateEAN13(code), code)

		wrong := fmt.Sprintf("%s%d", body, (check+1)%10)
		assert.False(t, ValidateEAN13(wrong), wrong)
	}
}

func TestValidateEAN13RejectsWrongShape(t *testing.T) {
	for _, bad := range []string{"", "590123412345", "59012341234570", "590123412345a", "5901-23412345"} {
		assert.False(t, ValidateEAN13(bad), bad)
	}
}

func TestComposeAndDecode(t *testing.T) {
	code, err := Compose("01", 0)
	require.NoError(t, err)
	assert.Equal(t, "8681000100000", code)
	assert.True(t, ValidateEAN13(code))
	assert.True(t, IsStoreBarcode(code))

	code, err = Compose("12", 345)
	require.NoError(t, err)
	parts, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, "868", parts.CountryCode)
	assert.Equal(t, "100", parts.CompanyCode)
	assert.Equal(t, "12", parts.CategoryCode)
	assert.Equal(t, "0345", parts.UniqueID)

	_, err = Compose("1", 1)
	assert.ErrorIs(t, err, ErrInvalidCategoryCode)
	_, err = Compose("01", 10000)
	assert.Error(t, err)

	_, err = Decode("8681000100001")
	assert.ErrorIs(t, err, ErrInvalidBarcode)
	assert.False(t, IsStoreBarcode("5901234123457"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "868 100 01 0000 0", Format("8681000100000"))
	assert.Equal(t, "123", Format("123"))
}
