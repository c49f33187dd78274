package datahub

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magi-quant/backtester/src/models"
)

func barOn(dtIdx time.Time, close float64) models.MarketTick {
	return models.NewMarketTick("X", close, close, close+1, close-1, 1e6, dtIdx)
}

func TestCleanse(t *testing.T) {
	d1 := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	t.Run("sorts ascending", func(t *testing.T) {
		cleansed := Cleanse([]models.MarketTick{barOn(d3, 102), barOn(d1, 100), barOn(d2, 101)})
		require.Len(t, cleansed, 3)
		assert.Equal(t, d1, cleansed[0].DtIdx)
		assert.Equal(t, d3, cleansed[2].DtIdx)
	})

	t.Run("drops duplicate dates keeping the first", func(t *testing.T) {
		first := barOn(d1, 100)
		duplicate := barOn(d1, 999)

		cleansed := Cleanse([]models.MarketTick{first, duplicate, barOn(d2, 101)})
		require.Len(t, cleansed, 2)
		assert.Equal(t, 100.0, cleansed[0].Close)
	})

	t.Run("drops bars with zero fields", func(t *testing.T) {
		bad := barOn(d2, 101)
		bad.Volume = 0

		cleansed := Cleanse([]models.MarketTick{barOn(d1, 100), bad})
		require.Len(t, cleansed, 1)
	})

	t.Run("drops bars with NaN fields", func(t *testing.T) {
		bad := barOn(d2, 101)
		bad.High = math.NaN()

		cleansed := Cleanse([]models.MarketTick{barOn(d1, 100), bad})
		require.Len(t, cleansed, 1)
	})
}

func TestTicksByDay(t *testing.T) {
	d1 := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	x1 := models.NewMarketTick("X", 100, 101, 102, 99, 1e6, d1)
	x2 := models.NewMarketTick("X", 101, 102, 103, 100, 1e6, d2)
	y2 := models.NewMarketTick("Y", 50, 51, 52, 49, 1e6, d2)

	byDay := TicksByDay(map[string][]models.MarketTick{
		"X": {x1, x2},
		"Y": {y2},
	})

	require.Len(t, byDay, 2)
	require.Len(t, byDay[d1], 1)
	require.Len(t, byDay[d2], 2)
	assert.Equal(t, x1, byDay[d1]["X"])
	assert.Equal(t, y2, byDay[d2]["Y"])

	days := TradingDays(byDay)
	require.Equal(t, []time.Time{d1, d2}, days)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	csv := "date,open,high,low,close,volume\n" +
		"2017-01-03,100,105,99,104,1000000\n" +
		"2017-01-02,98,101,97,100,900000\n" +
		"2017-01-04,0,105,99,104,1000000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aapl.csv"), []byte(csv), 0644))

	hub := New()
	symbolData, err := hub.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, symbolData, 1)

	ticks := symbolData["AAPL"]
	require.Len(t, ticks, 2)
	assert.Equal(t, time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC), ticks[0].DtIdx)
	assert.Equal(t, 100.0, ticks[0].Close)
	assert.Equal(t, "AAPL", ticks[0].Symbol)

	t.Run("bad date errors", func(t *testing.T) {
		badDir := t.TempDir()
		bad := "date,open,high,low,close,volume\nnot-a-date,1,1,1,1,1\n"
		require.NoError(t, os.WriteFile(filepath.Join(badDir, "x.csv"), []byte(bad), 0644))

		_, err := hub.LoadDir(badDir)
		require.Error(t, err)
	})

	t.Run("missing directory errors", func(t *testing.T) {
		_, err := hub.LoadDir(filepath.Join(dir, "missing"))
		require.Error(t, err)
	})
}
