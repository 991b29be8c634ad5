package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarket(t *testing.T) {
	t.Run("Params", func(t *testing.T) {
		tests := []struct {
			market Market
			want   MarketParams
		}{
			{
				market: MarketDayAheadHourly,
				want:   MarketParams{QueryName: "PRC_LMP", MarketRunID: "DAM", Version: 12, PriceColumn: "MW"},
			},
			{
				market: MarketRealTime15Min,
				want:   MarketParams{QueryName: "PRC_RTPD_LMP", MarketRunID: "RTPD", Version: 3, PriceColumn: "PRC"},
			},
			{
				market: MarketRealTimeHourly,
				want:   MarketParams{QueryName: "PRC_HASP_LMP", MarketRunID: "HASP", Version: 3, PriceColumn: "MW"},
			},
		}
		for _, tt := range tests {
			t.Run(string(tt.market), func(t *testing.T) {
				got, err := tt.market.Params()
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := Market("REAL_TIME_5_MIN").Params()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedMarket)

		_, err = Market("").Params()
		assert.ErrorIs(t, err, ErrUnsupportedMarket)
	})

	t.Run("Exhaustive", func(t *testing.T) {
		// every advertised market must have a parameter mapping
		for _, m := range Markets() {
			_, err := m.Params()
			assert.NoError(t, err, "market %s has no params", m)
		}
	})
}
