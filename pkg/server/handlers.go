package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gsheni/gridstatus/pkg/iso"
	"github.com/gsheni/gridstatus/pkg/log"
	"github.com/gsheni/gridstatus/pkg/types"
)

// provider resolves the grid operator from the iso query parameter,
// defaulting to CAISO.
func (s *Server) provider(r *http.Request) (iso.ISO, error) {
	id := r.URL.Query().Get("iso")
	if id == "" {
		id = iso.CAISOID
	}
	return s.isos.Provider(id)
}

// parseDate reads an optional date=YYYYMMDD query parameter. ok is false when
// the parameter is absent, meaning the caller wants today's live data.
func parseDate(r *http.Request) (date time.Time, ok bool, err error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Time{}, false, nil
	}
	d, err := time.Parse("20060102", v)
	if err != nil {
		return time.Time{}, false, err
	}
	return d, true, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

// writeFetchError maps accessor errors to response codes: caller mistakes are
// 400, upstream failures are 502.
func writeFetchError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrUnsupportedMarket):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch grid data", slog.Any("error", err))
		http.Error(w, "failed to fetch upstream data", http.StatusBadGateway)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.provider(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := p.GetLatestStatus(ctx)
	if err != nil {
		writeFetchError(ctx, w, err)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleFuelMix(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.provider(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, dated, err := parseDate(r)
	if err != nil {
		http.Error(w, "invalid date: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !dated {
		mix, err := p.GetLatestFuelMix(ctx)
		if err != nil {
			writeFetchError(ctx, w, err)
			return
		}
		writeJSON(w, mix)
		return
	}

	rows, err := p.GetHistoricalFuelMix(ctx, date)
	if err != nil {
		writeFetchError(ctx, w, err)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleDemand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.provider(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, dated, err := parseDate(r)
	if err != nil {
		http.Error(w, "invalid date: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !dated {
		row, err := p.GetLatestDemand(ctx)
		if err != nil {
			writeFetchError(ctx, w, err)
			return
		}
		writeJSON(w, row)
		return
	}

	rows, err := p.GetHistoricalDemand(ctx, date)
	if err != nil {
		writeFetchError(ctx, w, err)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.provider(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, dated, err := parseDate(r)
	if err != nil {
		http.Error(w, "invalid date: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !dated {
		row, err := p.GetLatestSupply(ctx)
		if err != nil {
			writeFetchError(ctx, w, err)
			return
		}
		writeJSON(w, row)
		return
	}

	rows, err := p.GetHistoricalSupply(ctx, date)
	if err != nil {
		writeFetchError(ctx, w, err)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleLMP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.provider(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	market := types.Market(r.URL.Query().Get("market"))
	if market == "" {
		http.Error(w, "market is required", http.StatusBadRequest)
		return
	}
	if _, err := market.Params(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var nodes []string
	if v := r.URL.Query().Get("nodes"); v != "" {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				nodes = append(nodes, n)
			}
		}
	}

	date, dated, err := parseDate(r)
	if err != nil {
		http.Error(w, "invalid date: "+err.Error(), http.StatusBadRequest)
		return
	}

	var rows []types.LMPRow
	if dated {
		rows, err = p.GetHistoricalLMP(ctx, date, market, nodes)
	} else {
		rows, err = p.GetLatestLMP(ctx, market, nodes)
	}
	if err != nil {
		writeFetchError(ctx, w, err)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handlePnodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.provider(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	nodes, err := p.GetPnodes(ctx)
	if err != nil {
		writeFetchError(ctx, w, err)
		return
	}
	writeJSON(w, nodes)
}
