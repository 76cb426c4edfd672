package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magaza-backend/internal/apperr"
)

func TestResolveDate(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	now := time.Date(2025, 6, 15, 9, 45, 30, 500, loc)

	got, err := ResolveDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ResolveDate("2025-01-02", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 9, 45, 30, 500, loc), got)

	got, err = ResolveDate("2025-01-02T08:00:00Z", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)))

	got, err = ResolveDate("2025-01-02T08:15", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 8, 15, 0, 0, loc), got)

	for _, bad := range []string{"02.01.2025", "2025-13-01", "yarın", "2025-01-02T25:00"} {
		_, err := ResolveDate(bad, now)
		assert.ErrorIs(t, err, apperr.ErrValidation, bad)
	}
}
