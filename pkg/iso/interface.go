package iso

import (
	"context"
	"time"

	"github.com/gsheni/gridstatus/pkg/types"
)

// ISO defines the accessor surface for a grid operator's public data feeds.
// Historical methods take a calendar date; the provider interprets the date's
// year/month/day fields in its own local timezone. All returned rows are
// built fresh per call and never cached.
type ISO interface {
	// Name returns the human-readable name of the grid operator.
	Name() string

	// GetLatestStatus returns the current operating status of the grid.
	GetLatestStatus(ctx context.Context) (types.GridStatus, error)

	// GetLatestFuelMix returns the most recent fuel mix snapshot.
	GetLatestFuelMix(ctx context.Context) (types.FuelMix, error)
	// GetFuelMixToday returns today's fuel mix in 5 minute intervals.
	GetFuelMixToday(ctx context.Context) ([]types.FuelMixRow, error)
	// GetFuelMixYesterday returns yesterday's fuel mix in 5 minute intervals.
	GetFuelMixYesterday(ctx context.Context) ([]types.FuelMixRow, error)
	// GetHistoricalFuelMix returns the fuel mix for the given day.
	GetHistoricalFuelMix(ctx context.Context, date time.Time) ([]types.FuelMixRow, error)

	// GetLatestDemand returns the most recent demand reading.
	GetLatestDemand(ctx context.Context) (types.DemandRow, error)
	// GetDemandToday returns today's demand in 5 minute intervals.
	GetDemandToday(ctx context.Context) ([]types.DemandRow, error)
	// GetDemandYesterday returns yesterday's demand in 5 minute intervals.
	GetDemandYesterday(ctx context.Context) ([]types.DemandRow, error)
	// GetHistoricalDemand returns demand for the given day.
	GetHistoricalDemand(ctx context.Context, date time.Time) ([]types.DemandRow, error)

	// GetLatestSupply returns the most recent total supply reading.
	GetLatestSupply(ctx context.Context) (types.SupplyRow, error)
	// GetSupplyToday returns today's supply in 5 minute intervals.
	GetSupplyToday(ctx context.Context) ([]types.SupplyRow, error)
	// GetSupplyYesterday returns yesterday's supply in 5 minute intervals.
	GetSupplyYesterday(ctx context.Context) ([]types.SupplyRow, error)
	// GetHistoricalSupply returns supply for the given day.
	GetHistoricalSupply(ctx context.Context, date time.Time) ([]types.SupplyRow, error)

	// GetPnodes returns the pricing node to aggregate node mapping.
	GetPnodes(ctx context.Context) ([]types.Pnode, error)

	// GetLatestLMP returns the most recent price per node. If nodes is empty
	// the provider's default trading hub nodes are used.
	GetLatestLMP(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error)
	// GetLMPToday returns today's prices for the given market and nodes.
	GetLMPToday(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error)
	// GetLMPYesterday returns yesterday's prices for the given market and nodes.
	GetLMPYesterday(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error)
	// GetHistoricalLMP returns prices for the given day, market and nodes.
	GetHistoricalLMP(ctx context.Context, date time.Time, market types.Market, nodes []string) ([]types.LMPRow, error)
}
