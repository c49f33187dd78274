package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOrderStateMachine(t *testing.T) {
	now := time.Date(2017, 1, 3, 0, 0, 0, 0, time.UTC)
	commissions := DefaultCommissionSchedule()

	t.Run("new order", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		require.Equal(t, OrderStateNew, order.State)
		require.Equal(t, 10.0, order.QuantityOutstanding)
		require.Equal(t, 0.0, order.QuantityFilled)
		require.Nil(t, order.CloseDtIdx)
	})

	t.Run("partial fill", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		order.Fill(100, 4, now, commissions)

		require.Equal(t, OrderStatePartiallyFilled, order.State)
		require.Equal(t, 6.0, order.QuantityOutstanding)
		require.Equal(t, 4.0, order.QuantityFilled)
		require.Nil(t, order.CloseDtIdx)
		require.Zero(t, order.Commission)
	})

	t.Run("full fill sets close date and commission", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		closeDt := now.AddDate(0, 0, 2)
		order.Fill(100, 10, closeDt, commissions)

		require.Equal(t, OrderStateFullyFilled, order.State)
		require.Equal(t, 0.0, order.QuantityOutstanding)
		require.Equal(t, 10.0, order.QuantityFilled)
		require.NotNil(t, order.CloseDtIdx)
		require.Equal(t, closeDt, *order.CloseDtIdx)
		require.Greater(t, order.Commission, 0.0)
	})

	t.Run("fill price is quantity weighted", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		order.Fill(100, 5, now, commissions)
		order.Fill(110, 5, now, commissions)

		require.InDelta(t, 105, order.FillPrice, 1e-9)
	})

	t.Run("quantity is conserved across fills", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		for _, q := range []float64{3, 2, 4, 1} {
			order.Fill(100, q, now, commissions)
			require.Equal(t, 10.0, order.Quantity())
		}
		require.Equal(t, OrderStateFullyFilled, order.State)
	})

	t.Run("overfill panics", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		require.Panics(t, func() {
			order.Fill(100, 11, now, commissions)
		})
	})

	t.Run("zero quantity fill panics", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		require.Panics(t, func() {
			order.Fill(100, 0, now, commissions)
		})
	})

	t.Run("fill after full fill panics", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		order.Fill(100, 10, now, commissions)
		require.Panics(t, func() {
			order.Fill(100, 1, now, commissions)
		})
	})

	t.Run("cancel from new", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		order.Cancel(now)

		require.Equal(t, OrderStateCancelled, order.State)
		require.NotNil(t, order.CloseDtIdx)
	})

	t.Run("cancel from partially filled", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		order.Fill(100, 4, now, commissions)
		order.Cancel(now)

		require.Equal(t, OrderStateCancelled, order.State)
	})

	t.Run("cancel on fully filled order is a no-op", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		closeDt := now.AddDate(0, 0, 1)
		order.Fill(100, 10, closeDt, commissions)
		order.Cancel(now.AddDate(0, 0, 5))

		require.Equal(t, OrderStateFullyFilled, order.State)
		require.Equal(t, closeDt, *order.CloseDtIdx)
	})

	t.Run("cancel on cancelled order keeps original close date", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		order.Cancel(now)
		order.Cancel(now.AddDate(0, 0, 5))

		require.Equal(t, OrderStateCancelled, order.State)
		require.Equal(t, now, *order.CloseDtIdx)
	})
}

func TestOrderValidityWindow(t *testing.T) {
	now := time.Date(2017, 1, 3, 0, 0, 0, 0, time.UTC)

	t.Run("unbounded by default", func(t *testing.T) {
		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		require.True(t, order.IsExecutable(now.AddDate(-10, 0, 0)))
		require.True(t, order.IsExecutable(now.AddDate(10, 0, 0)))
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		from := now.AddDate(0, 0, 1)
		to := now.AddDate(0, 0, 5)

		order := NewOrder("AAPL", Buy, Limit, 100, 10, now)
		order.ValidFrom = &from
		order.ValidTo = &to

		require.False(t, order.IsExecutable(now))
		require.True(t, order.IsExecutable(from))
		require.True(t, order.IsExecutable(to))
		require.False(t, order.IsExecutable(to.AddDate(0, 0, 1)))
	})
}

func TestCommissionSchedule(t *testing.T) {
	commissions := DefaultCommissionSchedule()

	t.Run("flat minimum applies to small orders", func(t *testing.T) {
		// per share: 0.005 * 10 = 0.05, below the minimum
		require.Equal(t, 1.0, commissions.Charge(100, 10))
	})

	t.Run("per share rate applies in between", func(t *testing.T) {
		// per share: 0.005 * 1000 = 5, notional cap: 0.005 * 100 * 1000 = 500
		require.Equal(t, 5.0, commissions.Charge(100, 1000))
	})

	t.Run("notional fraction caps large orders on cheap stock", func(t *testing.T) {
		// per share: 5, notional cap: 0.005 * 0.5 * 1000 = 2.5
		require.Equal(t, 2.5, commissions.Charge(0.5, 1000))
	})

	t.Run("commission lies within bounds", func(t *testing.T) {
		for _, quantity := range []float64{1, 10, 100, 1000, 10000} {
			charge := commissions.Charge(100, quantity)
			notionalCap := commissions.MaxRateFraction * 100 * quantity
			if commissions.PerShare*quantity < commissions.Minimum {
				require.Equal(t, commissions.Minimum, charge)
			} else {
				require.GreaterOrEqual(t, charge, commissions.Minimum)
				require.LessOrEqual(t, charge, notionalCap)
			}
		}
	})
}

func TestOrderTypeValidate(t *testing.T) {
	require.NoError(t, Market.Validate())
	require.NoError(t, Limit.Validate())
	require.NoError(t, Stop.Validate())
	require.Error(t, OrderType("stop_limit").Validate())
}

func TestOrderDirectionValidate(t *testing.T) {
	require.NoError(t, Buy.Validate())
	require.NoError(t, Sell.Validate())
	require.Error(t, OrderDirection("short").Validate())
}

func TestMarketOrderPriceIsNaN(t *testing.T) {
	order := NewOrder("AAPL", Buy, Market, math.NaN(), 10, time.Time{})
	require.True(t, math.IsNaN(order.Price))
}
