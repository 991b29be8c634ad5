package server

import (
	"context"
	"time"

	"github.com/gsheni/gridstatus/pkg/iso"
	"github.com/gsheni/gridstatus/pkg/types"
	"github.com/stretchr/testify/mock"
)

type mockISO struct {
	mock.Mock
}

var _ iso.ISO = (*mockISO)(nil)

func (m *mockISO) Name() string {
	return "Mock ISO"
}

func (m *mockISO) GetLatestStatus(ctx context.Context) (types.GridStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.GridStatus), args.Error(1)
}

func (m *mockISO) GetLatestFuelMix(ctx context.Context) (types.FuelMix, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.FuelMix), args.Error(1)
}

func (m *mockISO) GetFuelMixToday(ctx context.Context) ([]types.FuelMixRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.FuelMixRow), args.Error(1)
}

func (m *mockISO) GetFuelMixYesterday(ctx context.Context) ([]types.FuelMixRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.FuelMixRow), args.Error(1)
}

func (m *mockISO) GetHistoricalFuelMix(ctx context.Context, date time.Time) ([]types.FuelMixRow, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]types.FuelMixRow), args.Error(1)
}

func (m *mockISO) GetLatestDemand(ctx context.Context) (types.DemandRow, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.DemandRow), args.Error(1)
}

func (m *mockISO) GetDemandToday(ctx context.Context) ([]types.DemandRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.DemandRow), args.Error(1)
}

func (m *mockISO) GetDemandYesterday(ctx context.Context) ([]types.DemandRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.DemandRow), args.Error(1)
}

func (m *mockISO) GetHistoricalDemand(ctx context.Context, date time.Time) ([]types.DemandRow, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]types.DemandRow), args.Error(1)
}

func (m *mockISO) GetLatestSupply(ctx context.Context) (types.SupplyRow, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.SupplyRow), args.Error(1)
}

func (m *mockISO) GetSupplyToday(ctx context.Context) ([]types.SupplyRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.SupplyRow), args.Error(1)
}

func (m *mockISO) GetSupplyYesterday(ctx context.Context) ([]types.SupplyRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.SupplyRow), args.Error(1)
}

func (m *mockISO) GetHistoricalSupply(ctx context.Context, date time.Time) ([]types.SupplyRow, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]types.SupplyRow), args.Error(1)
}

func (m *mockISO) GetPnodes(ctx context.Context) ([]types.Pnode, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.Pnode), args.Error(1)
}

func (m *mockISO) GetLatestLMP(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error) {
	args := m.Called(ctx, market, nodes)
	return args.Get(0).([]types.LMPRow), args.Error(1)
}

func (m *mockISO) GetLMPToday(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error) {
	args := m.Called(ctx, market, nodes)
	return args.Get(0).([]types.LMPRow), args.Error(1)
}

func (m *mockISO) GetLMPYesterday(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error) {
	args := m.Called(ctx, market, nodes)
	return args.Get(0).([]types.LMPRow), args.Error(1)
}

func (m *mockISO) GetHistoricalLMP(ctx context.Context, date time.Time, market types.Market, nodes []string) ([]types.LMPRow, error) {
	args := m.Called(ctx, date, market, nodes)
	return args.Get(0).([]types.LMPRow), args.Error(1)
}
