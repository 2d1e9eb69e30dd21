package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSide_SignAndOpposite(t *testing.T) {
	assert.True(t, decimal.NewFromInt(1).Equal(SideBuy.Sign()))
	assert.True(t, decimal.NewFromInt(-1).Equal(SideSell.Sign()))
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
}

func TestSignal_StringAndSide(t *testing.T) {
	assert.Equal(t, "BUY", SignalBuy.String())
	assert.Equal(t, "SELL", SignalSell.String())
	assert.Equal(t, "NONE", SignalNone.String())

	assert.Equal(t, SideBuy, SignalBuy.Side())
	assert.Equal(t, SideSell, SignalSell.Side())
}

func TestSortBars_ByCloseTime(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{CloseTime: base.Add(3 * time.Hour)},
		{CloseTime: base.Add(time.Hour)},
		{CloseTime: base.Add(2 * time.Hour)},
	}

	SortBars(bars)

	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].CloseTime.After(bars[i-1].CloseTime))
	}
}

func TestCloses_PreservesOrder(t *testing.T) {
	bars := []Bar{
		{Close: decimal.NewFromInt(1)},
		{Close: decimal.NewFromInt(2)},
		{Close: decimal.NewFromInt(3)},
	}

	closes := Closes(bars)
	assert.Len(t, closes, 3)
	for i, c := range closes {
		assert.True(t, decimal.NewFromInt(int64(i+1)).Equal(c))
	}
}
