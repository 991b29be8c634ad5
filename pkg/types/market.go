package types

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMarket is returned when a price query names a market that has
// no OASIS parameter mapping.
var ErrUnsupportedMarket = errors.New("lmp market is not supported")

// Market identifies a CAISO pricing market.
type Market string

const (
	MarketDayAheadHourly Market = "DAY_AHEAD_HOURLY" // PRC_LMP
	MarketRealTime15Min  Market = "REAL_TIME_15_MIN" // PRC_RTPD_LMP
	MarketRealTimeHourly Market = "REAL_TIME_HOURLY" // PRC_HASP_LMP
)

// MarketParams holds the fixed OASIS query parameters for a market.
type MarketParams struct {
	// QueryName is the OASIS queryname parameter.
	QueryName string
	// MarketRunID is the OASIS market_run_id parameter.
	MarketRunID string
	// Version is the OASIS API version for this query.
	Version int
	// PriceColumn is the name of the value column in the returned CSV. OASIS
	// uses MW for hourly queries and PRC for the 15-minute query.
	PriceColumn string
}

var marketParams = map[Market]MarketParams{
	MarketDayAheadHourly: {
		QueryName:   "PRC_LMP",
		MarketRunID: "DAM",
		Version:     12,
		PriceColumn: "MW",
	},
	MarketRealTime15Min: {
		QueryName:   "PRC_RTPD_LMP",
		MarketRunID: "RTPD",
		Version:     3,
		PriceColumn: "PRC",
	},
	MarketRealTimeHourly: {
		QueryName:   "PRC_HASP_LMP",
		MarketRunID: "HASP",
		Version:     3,
		PriceColumn: "MW",
	},
}

// Params returns the OASIS parameters for the market or ErrUnsupportedMarket
// if the market has no mapping.
func (m Market) Params() (MarketParams, error) {
	p, ok := marketParams[m]
	if !ok {
		return MarketParams{}, fmt.Errorf("%w: %q", ErrUnsupportedMarket, string(m))
	}
	return p, nil
}

// Markets returns every supported market.
func Markets() []Market {
	return []Market{MarketDayAheadHourly, MarketRealTime15Min, MarketRealTimeHourly}
}
