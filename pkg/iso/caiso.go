package iso

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gsheni/gridstatus/pkg/common"
	"github.com/gsheni/gridstatus/pkg/log"
	"github.com/gsheni/gridstatus/pkg/types"
	"github.com/levenlabs/go-lflag"
)

// CAISOID is the registry identifier for the California ISO provider.
const CAISOID = "caiso"

const caisoName = "California ISO"

// TradingHubNodes are the aggregate pricing points used when a price query
// supplies no nodes.
var TradingHubNodes = []string{
	"TH_NP15_GEN-APND",
	"TH_SP15_GEN-APND",
	"TH_ZP26_GEN-APND",
}

// CAISO implements the ISO interface for the California ISO. It retrieves
// live and historical data from the Today's Outlook endpoints and pricing
// data from the OASIS SingleZip API.
type CAISO struct {
	baseURL    string
	historyURL string
	oasisURL   string
	client     *http.Client

	// pause between failed OASIS attempts
	retryWait time.Duration
	// pause after every OASIS request to stay under the rate limit
	oasisDelay time.Duration
}

// configuredCAISO sets up flags for CAISO and returns the instance.
// It uses lflag to register command-line flags for configuration.
func configuredCAISO() *CAISO {
	c := NewCAISO()
	base := lflag.String("caiso-base-url", "https://www.caiso.com/outlook/SP", "URL for the CAISO Today's Outlook API")
	history := lflag.String("caiso-history-url", "https://www.caiso.com/outlook/SP/History", "URL for the CAISO Today's Outlook history archive")
	oasis := lflag.String("caiso-oasis-url", "http://oasis.caiso.com/oasisapi/SingleZip", "URL for the CAISO OASIS SingleZip API")
	delay := lflag.Duration("caiso-oasis-delay", 5*time.Second, "Pause after each OASIS request to avoid the rate limit")

	lflag.Do(func() {
		c.baseURL = *base
		c.historyURL = *history
		c.oasisURL = *oasis
		c.oasisDelay = *delay
	})

	return c
}

// NewCAISO returns a CAISO provider with the production endpoints.
func NewCAISO() *CAISO {
	return &CAISO{
		baseURL:    "https://www.caiso.com/outlook/SP",
		historyURL: "https://www.caiso.com/outlook/SP/History",
		oasisURL:   "http://oasis.caiso.com/oasisapi/SingleZip",
		client:     common.HTTPClient(30 * time.Second),
		retryWait:  5 * time.Second,
		oasisDelay: 5 * time.Second,
	}
}

// Name returns the human-readable name of the grid operator.
func (c *CAISO) Name() string { return caisoName }

// GetStats returns the raw stats.txt JSON blob.
func (c *CAISO) GetStats(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/stats.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caiso stats returned status: %d", resp.StatusCode)
	}

	var stats map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

// GetLatestStatus returns the current operating status of the grid.
// Known possible status values: Normal.
func (c *CAISO) GetLatestStatus(ctx context.Context) (types.GridStatus, error) {
	stats, err := c.GetStats(ctx)
	if err != nil {
		return types.GridStatus{}, err
	}

	slotDate, _ := stats["slotDate"].(string)
	day, err := time.ParseInLocation("2006-01-02", slotDate, ptLocation)
	if err != nil {
		return types.GridStatus{}, fmt.Errorf("failed to parse slotDate (%q): %w", slotDate, err)
	}

	statuses, _ := stats["gridstatus"].([]any)
	if len(statuses) == 0 {
		return types.GridStatus{}, fmt.Errorf("stats response has no gridstatus")
	}
	status, _ := statuses[0].(string)

	reserves, _ := stats["Current_reserve"].(float64)

	return types.GridStatus{
		Time:     day,
		Status:   status,
		Reserves: reserves,
		ISO:      caisoName,
	}, nil
}

// currentDay returns the grid's notion of the current date, taken from the
// stats endpoint rather than the local clock.
func (c *CAISO) currentDay(ctx context.Context) (time.Time, error) {
	status, err := c.GetLatestStatus(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return status.Time, nil
}

// GetLatestFuelMix returns the most recent fuel mix snapshot in MW.
// The upstream feed updates every 5 minutes.
func (c *CAISO) GetLatestFuelMix(ctx context.Context) (types.FuelMix, error) {
	day, err := c.currentDay(ctx)
	if err != nil {
		return types.FuelMix{}, err
	}

	header, records, err := c.fetchCSV(ctx, c.baseURL+"/fuelsource.csv")
	if err != nil {
		return types.FuelMix{}, err
	}
	rows, err := parseFuelMixRows(ctx, header, records, day)
	if err != nil {
		return types.FuelMix{}, err
	}
	if len(rows) == 0 {
		return types.FuelMix{}, fmt.Errorf("fuel mix feed returned no rows")
	}

	last := rows[len(rows)-1]
	return types.FuelMix{Time: last.Time, Mix: last.Mix, ISO: caisoName}, nil
}

// GetFuelMixToday returns today's fuel mix in 5 minute intervals.
func (c *CAISO) GetFuelMixToday(ctx context.Context) ([]types.FuelMixRow, error) {
	return c.GetHistoricalFuelMix(ctx, time.Now().In(ptLocation))
}

// GetFuelMixYesterday returns yesterday's fuel mix in 5 minute intervals.
func (c *CAISO) GetFuelMixYesterday(ctx context.Context) ([]types.FuelMixRow, error) {
	return c.GetHistoricalFuelMix(ctx, time.Now().In(ptLocation).AddDate(0, 0, -1))
}

// GetHistoricalFuelMix returns the fuel mix in 5 minute intervals for the
// given day.
func (c *CAISO) GetHistoricalFuelMix(ctx context.Context, date time.Time) ([]types.FuelMixRow, error) {
	header, records, err := c.fetchHistoricalCSV(ctx, "fuelsource.csv", date)
	if err != nil {
		return nil, err
	}
	return parseFuelMixRows(ctx, header, records, date)
}

// GetLatestDemand returns the most recent demand reading in MW.
// The upstream feed updates every 5 minutes.
func (c *CAISO) GetLatestDemand(ctx context.Context) (types.DemandRow, error) {
	day, err := c.currentDay(ctx)
	if err != nil {
		return types.DemandRow{}, err
	}

	header, records, err := c.fetchCSV(ctx, c.baseURL+"/demand.csv")
	if err != nil {
		return types.DemandRow{}, err
	}
	rows, err := parseDemandRows(ctx, header, records, day)
	if err != nil {
		return types.DemandRow{}, err
	}
	if len(rows) == 0 {
		return types.DemandRow{}, fmt.Errorf("demand feed returned no rows")
	}
	return rows[len(rows)-1], nil
}

// GetDemandToday returns today's demand in 5 minute intervals.
func (c *CAISO) GetDemandToday(ctx context.Context) ([]types.DemandRow, error) {
	return c.GetHistoricalDemand(ctx, time.Now().In(ptLocation))
}

// GetDemandYesterday returns yesterday's demand in 5 minute intervals.
func (c *CAISO) GetDemandYesterday(ctx context.Context) ([]types.DemandRow, error) {
	return c.GetHistoricalDemand(ctx, time.Now().In(ptLocation).AddDate(0, 0, -1))
}

// GetHistoricalDemand returns demand in 5 minute intervals for the given
// day. Intervals without a reading yet are dropped.
func (c *CAISO) GetHistoricalDemand(ctx context.Context, date time.Time) ([]types.DemandRow, error) {
	header, records, err := c.fetchHistoricalCSV(ctx, "demand.csv", date)
	if err != nil {
		return nil, err
	}
	return parseDemandRows(ctx, header, records, date)
}

// GetLatestSupply returns the most recent total supply reading in MW,
// derived from the fuel mix.
func (c *CAISO) GetLatestSupply(ctx context.Context) (types.SupplyRow, error) {
	mix, err := c.GetLatestFuelMix(ctx)
	if err != nil {
		return types.SupplyRow{}, err
	}
	return types.SupplyRow{Time: mix.Time, Supply: sumMix(mix.Mix)}, nil
}

// GetSupplyToday returns today's supply in 5 minute intervals.
func (c *CAISO) GetSupplyToday(ctx context.Context) ([]types.SupplyRow, error) {
	return c.GetHistoricalSupply(ctx, time.Now().In(ptLocation))
}

// GetSupplyYesterday returns yesterday's supply in 5 minute intervals.
func (c *CAISO) GetSupplyYesterday(ctx context.Context) ([]types.SupplyRow, error) {
	return c.GetHistoricalSupply(ctx, time.Now().In(ptLocation).AddDate(0, 0, -1))
}

// GetHistoricalSupply returns supply in 5 minute intervals for the given
// day, derived by summing the fuel mix columns.
func (c *CAISO) GetHistoricalSupply(ctx context.Context, date time.Time) ([]types.SupplyRow, error) {
	mix, err := c.GetHistoricalFuelMix(ctx, date)
	if err != nil {
		return nil, err
	}
	supply := make([]types.SupplyRow, 0, len(mix))
	for _, row := range mix {
		supply = append(supply, types.SupplyRow{Time: row.Time, Supply: sumMix(row.Mix)})
	}
	return supply, nil
}

// GetLatestLMP returns the most recent price per node from today's data.
func (c *CAISO) GetLatestLMP(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error) {
	rows, err := c.GetLMPToday(ctx, market, nodes)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]types.LMPRow)
	for _, row := range rows {
		if prev, ok := latest[row.Node]; !ok || row.Time.After(prev.Time) {
			latest[row.Node] = row
		}
	}

	out := make([]types.LMPRow, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out, nil
}

// GetLMPToday returns today's prices for the given market and nodes.
func (c *CAISO) GetLMPToday(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error) {
	return c.GetHistoricalLMP(ctx, time.Now().In(ptLocation), market, nodes)
}

// GetLMPYesterday returns yesterday's prices for the given market and nodes.
func (c *CAISO) GetLMPYesterday(ctx context.Context, market types.Market, nodes []string) ([]types.LMPRow, error) {
	return c.GetHistoricalLMP(ctx, time.Now().In(ptLocation).AddDate(0, 0, -1), market, nodes)
}

// fetchHistoricalCSV retrieves one of the per-day archive CSVs. The date's
// calendar fields select the archive directory.
func (c *CAISO) fetchHistoricalCSV(ctx context.Context, name string, date time.Time) ([]string, [][]string, error) {
	url := fmt.Sprintf("%s/%s/%s", c.historyURL, date.Format("20060102"), name)
	return c.fetchCSV(ctx, url)
}

// fetchCSV retrieves and parses a CSV, returning the header and data records.
func (c *CAISO) fetchCSV(ctx context.Context, url string) ([]string, [][]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	log.Ctx(ctx).DebugContext(ctx, "fetching caiso csv", slog.String("url", url))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("caiso returned status %d for %s", resp.StatusCode, url)
	}

	r := csv.NewReader(resp.Body)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse csv from %s: %w", url, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty csv from %s", url)
	}

	header := records[0]
	// the live feeds are served with a BOM
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, records[1:], nil
}

// parseFuelMixRows maps a Today's Outlook fuel mix table onto rows, turning
// the bare clock column into timestamps on date. Every non-Time column is a
// fuel.
func parseFuelMixRows(ctx context.Context, header []string, records [][]string, date time.Time) ([]types.FuelMixRow, error) {
	timeIdx := columnIndex(header, "Time")
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: Time", ErrMissingColumns)
	}

	rows := make([]types.FuelMixRow, 0, len(records))
	for _, rec := range records {
		if timeIdx >= len(rec) || rec[timeIdx] == "" {
			continue
		}
		ts, err := makeTimestamp(rec[timeIdx], date, ptLocation)
		if err != nil {
			return nil, err
		}

		mix := make(map[string]float64, len(header)-1)
		empty := true
		for i, name := range header {
			if i == timeIdx || i >= len(rec) || rec[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				log.Ctx(ctx).WarnContext(ctx, "failed to parse fuel mix value",
					slog.String("fuel", name), slog.String("value", rec[i]), slog.Any("error", err))
				continue
			}
			mix[name] = v
			empty = false
		}
		if empty {
			// trailing intervals that have no readings yet
			continue
		}
		rows = append(rows, types.FuelMixRow{Time: ts, Mix: mix})
	}
	return rows, nil
}

// parseDemandRows maps a Today's Outlook demand table onto rows, dropping
// intervals without a current demand reading.
func parseDemandRows(ctx context.Context, header []string, records [][]string, date time.Time) ([]types.DemandRow, error) {
	timeIdx := columnIndex(header, "Time")
	demandIdx := columnIndex(header, "Current demand")
	if timeIdx < 0 || demandIdx < 0 {
		return nil, fmt.Errorf("%w: Time, Current demand", ErrMissingColumns)
	}

	rows := make([]types.DemandRow, 0, len(records))
	for _, rec := range records {
		if timeIdx >= len(rec) || demandIdx >= len(rec) || rec[timeIdx] == "" || rec[demandIdx] == "" {
			continue
		}
		demand, err := strconv.ParseFloat(rec[demandIdx], 64)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to parse demand value",
				slog.String("value", rec[demandIdx]), slog.Any("error", err))
			continue
		}
		ts, err := makeTimestamp(rec[timeIdx], date, ptLocation)
		if err != nil {
			return nil, err
		}
		rows = append(rows, types.DemandRow{Time: ts, Demand: demand})
	}
	return rows, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func sumMix(mix map[string]float64) float64 {
	var total float64
	for _, v := range mix {
		total += v
	}
	return total
}
