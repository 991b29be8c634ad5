package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gsheni/gridstatus/pkg/iso"
	"github.com/gsheni/gridstatus/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(m *mockISO) *Server {
	isos := iso.NewMap()
	isos.SetProvider(iso.CAISOID, m)
	return &Server{isos: isos}
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	s.setupHandler().ServeHTTP(w, req)
	return w
}

func TestServer(t *testing.T) {
	t.Run("Healthz", func(t *testing.T) {
		s := newTestServer(&mockISO{})
		w := doRequest(t, s, "/healthz")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Status", func(t *testing.T) {
		m := &mockISO{}
		m.On("GetLatestStatus", mock.Anything).Return(types.GridStatus{
			Status:   "Normal",
			Reserves: 1500,
			ISO:      "Mock ISO",
		}, nil)

		s := newTestServer(m)
		w := doRequest(t, s, "/api/status")
		require.Equal(t, http.StatusOK, w.Code)

		var status types.GridStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "Normal", status.Status)
		assert.Equal(t, 1500.0, status.Reserves)
		m.AssertExpectations(t)
	})

	t.Run("StatusUpstreamError", func(t *testing.T) {
		m := &mockISO{}
		m.On("GetLatestStatus", mock.Anything).Return(types.GridStatus{}, errors.New("boom"))

		s := newTestServer(m)
		w := doRequest(t, s, "/api/status")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		s := newTestServer(&mockISO{})
		w := doRequest(t, s, "/api/status?iso=ercot")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("LMPRequiresMarket", func(t *testing.T) {
		s := newTestServer(&mockISO{})
		w := doRequest(t, s, "/api/lmp")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("LMPUnsupportedMarket", func(t *testing.T) {
		s := newTestServer(&mockISO{})
		w := doRequest(t, s, "/api/lmp?market=REAL_TIME_5_MIN")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("LMPLatest", func(t *testing.T) {
		m := &mockISO{}
		m.On("GetLatestLMP", mock.Anything, types.MarketDayAheadHourly, []string{"NODE_A", "NODE_B"}).
			Return([]types.LMPRow{
				{Market: types.MarketDayAheadHourly, Node: "NODE_A", LMP: 25.0},
				{Market: types.MarketDayAheadHourly, Node: "NODE_B", LMP: 30.0},
			}, nil)

		s := newTestServer(m)
		w := doRequest(t, s, "/api/lmp?market=DAY_AHEAD_HOURLY&nodes=NODE_A,NODE_B")
		require.Equal(t, http.StatusOK, w.Code)

		var rows []types.LMPRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "NODE_A", rows[0].Node)
		m.AssertExpectations(t)
	})

	t.Run("LMPHistorical", func(t *testing.T) {
		date := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		m := &mockISO{}
		m.On("GetHistoricalLMP", mock.Anything, date, types.MarketDayAheadHourly, []string(nil)).
			Return([]types.LMPRow{{Market: types.MarketDayAheadHourly, Node: "TH_NP15_GEN-APND", LMP: 40.0}}, nil)

		s := newTestServer(m)
		w := doRequest(t, s, "/api/lmp?market=DAY_AHEAD_HOURLY&date=20230101")
		require.Equal(t, http.StatusOK, w.Code)

		var rows []types.LMPRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		m.AssertExpectations(t)
	})

	t.Run("LMPUpstreamError", func(t *testing.T) {
		m := &mockISO{}
		m.On("GetLatestLMP", mock.Anything, types.MarketDayAheadHourly, []string(nil)).
			Return([]types.LMPRow(nil), errors.New("oasis down"))

		s := newTestServer(m)
		w := doRequest(t, s, "/api/lmp?market=DAY_AHEAD_HOURLY")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("DemandLatestAndHistorical", func(t *testing.T) {
		date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)
		m := &mockISO{}
		m.On("GetLatestDemand", mock.Anything).Return(types.DemandRow{Demand: 20150}, nil)
		m.On("GetHistoricalDemand", mock.Anything, date).
			Return([]types.DemandRow{{Demand: 20000}, {Demand: 20100}}, nil)

		s := newTestServer(m)

		w := doRequest(t, s, "/api/demand")
		require.Equal(t, http.StatusOK, w.Code)
		var row types.DemandRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &row))
		assert.Equal(t, 20150.0, row.Demand)

		w = doRequest(t, s, "/api/demand?date=20230415")
		require.Equal(t, http.StatusOK, w.Code)
		var rows []types.DemandRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		assert.Len(t, rows, 2)
		m.AssertExpectations(t)
	})

	t.Run("BadDate", func(t *testing.T) {
		s := newTestServer(&mockISO{})
		w := doRequest(t, s, "/api/demand?date=2023-04-15")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Pnodes", func(t *testing.T) {
		m := &mockISO{}
		m.On("GetPnodes", mock.Anything).Return([]types.Pnode{
			{AggregateID: "TH_NP15_GEN-APND", ID: "NP15_PNODE_1"},
		}, nil)

		s := newTestServer(m)
		w := doRequest(t, s, "/api/pnodes")
		require.Equal(t, http.StatusOK, w.Code)

		var nodes []types.Pnode
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
		require.Len(t, nodes, 1)
		assert.Equal(t, "NP15_PNODE_1", nodes[0].ID)
	})

	t.Run("FuelMixLatest", func(t *testing.T) {
		m := &mockISO{}
		m.On("GetLatestFuelMix", mock.Anything).Return(types.FuelMix{
			Mix: map[string]float64{"Solar": 100},
			ISO: "Mock ISO",
		}, nil)

		s := newTestServer(m)
		w := doRequest(t, s, "/api/fuelmix")
		require.Equal(t, http.StatusOK, w.Code)

		var mix types.FuelMix
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mix))
		assert.Equal(t, 100.0, mix.Mix["Solar"])
	})

	t.Run("SupplyHistorical", func(t *testing.T) {
		date := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)
		m := &mockISO{}
		m.On("GetHistoricalSupply", mock.Anything, date).
			Return([]types.SupplyRow{{Supply: 250}}, nil)

		s := newTestServer(m)
		w := doRequest(t, s, "/api/supply?date=20230415")
		require.Equal(t, http.StatusOK, w.Code)

		var rows []types.SupplyRow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, 250.0, rows[0].Supply)
	})
}
