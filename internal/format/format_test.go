package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

func TestDate(t *testing.T) {
	at := time.Date(2026, 10, 4, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "04/10/26", Date(at))
	assert.Equal(t, "14:05 on 04/10/26", DateTime(at))
	assert.Equal(t, Placeholder, Date(time.Time{}))
	assert.Equal(t, Placeholder, DateTime(time.Time{}))
}

func TestTimestampFormats(t *testing.T) {
	assert.Equal(t, "04/10/26", TimestampDate("2026-10-04T14:05:00Z"))
	assert.Equal(t, "14:05 on 04/10/26", TimestampDateTime("2026-10-04T14:05:00Z"))
	assert.Equal(t, Placeholder, TimestampDate(""))
	assert.Equal(t, Placeholder, TimestampDateTime(models.Timestamp("31/31/31")))
}

func TestGBP(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "£0.00"},
		{12.5, "£12.50"},
		{1234.5, "£1,234.50"},
		{1234567.891, "£1,234,567.89"},
		{-45, "-£45.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GBP(tt.amount), "amount %v", tt.amount)
	}
	assert.Equal(t, "£10.30", GBPDecimal(decimal.NewFromFloat(10.1).Add(decimal.NewFromFloat(0.2))))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysUntil(now.Add(2*time.Hour), now))
	assert.Equal(t, 7, DaysUntil(now.Add(7*24*time.Hour), now))
	assert.Equal(t, 8, DaysUntil(now.Add(7*24*time.Hour+time.Minute), now))
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.LessOrEqual(t, DaysUntil(now.Add(-25*time.Hour), now), 0)
	assert.InDelta(t, 49.0, HoursSince(now.Add(-49*time.Hour), now), 0.0001)
}
