package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/inventory"
)

func TestPeriodFor_TrimestresCalendario(t *testing.T) {
	cases := map[string]string{
		"2025-01-01T00:00:00Z": "Q1 2025",
		"2025-03-31T23:59:59Z": "Q1 2025",
		"2025-04-01T00:00:00Z": "Q2 2025",
		"2025-09-30T12:00:00Z": "Q3 2025",
		"2025-12-31T23:59:59Z": "Q4 2025",
	}
	for in, want := range cases {
		ts, err := time.Parse(time.RFC3339, in)
		require.NoError(t, err)
		assert.Equal(t, want, inventory.PeriodFor(ts).Label(), in)
	}
}

func TestPeriod_NextYParse(t *testing.T) {
	p := inventory.Period{Year: 2024, Quarter: 4}
	assert.Equal(t, "Q1 2025", p.Next().Label())

	parsed, err := inventory.ParsePeriod("Q3 2025")
	require.NoError(t, err)
	assert.Equal(t, inventory.Period{Year: 2025, Quarter: 3}, parsed)

	_, err = inventory.ParsePeriod("Q5 2025")
	assert.Error(t, err)
	_, err = inventory.ParsePeriod("2025")
	assert.Error(t, err)
}

func TestApplyDelta_AcumulaUsoYReposicion(t *testing.T) {
	now := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	p := inventory.PeriodFor(now)

	rec := inventory.ApplyDelta(nil, "item-1", p, 10, 6, now)
	assert.Equal(t, "Q1 2025", rec.Period)
	assert.Equal(t, 10, rec.StockStart)
	assert.Equal(t, 4, rec.Usage)
	assert.Equal(t, 6, rec.StockEnd)
	assert.False(t, rec.Restocked)

	rec = inventory.ApplyDelta(rec, "item-1", p, 6, 16, now.Add(time.Hour))
	assert.Equal(t, 10, rec.StockStart, "stock_start se fija una sola vez por periodo")
	assert.Equal(t, 4, rec.Usage)
	assert.Equal(t, 10, rec.Restock)
	assert.True(t, rec.Restocked)
	assert.Equal(t, 16, rec.StockEnd)
}

func TestForecastNext_Tendencia(t *testing.T) {
	history := []entity.UsagePeriodRecord{
		{Year: 2025, Quarter: 2, Usage: 20},
		{Year: 2025, Quarter: 1, Usage: 10},
		{Year: 2025, Quarter: 3, Usage: 30},
	}
	f := inventory.ForecastNext("item-1", history, 15)
	assert.Equal(t, "Q4 2025", f.Period)
	assert.Equal(t, 40, f.ExpectedUsage)
	assert.Equal(t, 25, f.SuggestRestock)
	assert.InDelta(t, 10.0, f.Slope, 0.0001)
}

func TestForecastNext_SinHistoriaYTendenciaNegativa(t *testing.T) {
	assert.Equal(t, 0, inventory.ForecastNext("x", nil, 3).ExpectedUsage)

	history := []entity.UsagePeriodRecord{
		{Year: 2025, Quarter: 1, Usage: 10},
		{Year: 2025, Quarter: 2, Usage: 2},
	}
	f := inventory.ForecastNext("x", history, 0)
	assert.Equal(t, 0, f.ExpectedUsage, "la proyección nunca es negativa")
}

func TestWeightedUnitValue(t *testing.T) {
	v := inventory.WeightedUnitValue(10, decimal.NewFromInt(100), 10, decimal.NewFromInt(200))
	assert.True(t, v.Equal(decimal.NewFromInt(150)), v.String())
	assert.True(t, inventory.WeightedUnitValue(0, decimal.Zero, 0, decimal.Zero).IsZero())
}
