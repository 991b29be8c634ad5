package iso

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gsheni/gridstatus/pkg/log"
	"github.com/gsheni/gridstatus/pkg/types"
)

const (
	// oasisTimeFormat is the UTC timestamp format OASIS expects in query
	// parameters.
	oasisTimeFormat = "20060102T15:04-0000"

	// oasisAttempts is the total number of GET attempts per query.
	oasisAttempts = 3
)

var (
	// ErrRetriesExhausted is returned when every OASIS attempt came back with
	// a non-success status.
	ErrRetriesExhausted = errors.New("oasis retries exhausted")

	// ErrMalformedArchive is returned when the OASIS payload is not a valid
	// ZIP archive.
	ErrMalformedArchive = errors.New("malformed oasis archive")

	// ErrMissingColumns is returned when a CSV is missing expected columns.
	// OASIS serves error pages through the same endpoint, so this can also
	// mean the query itself was rejected upstream.
	ErrMissingColumns = errors.New("csv missing expected columns")
)

// rawLMPRow is one record of the long-format OASIS price table: a single
// price component for a (interval, node) pair.
type rawLMPRow struct {
	// IntervalStart is the INTERVALSTARTTIME_GMT value, an RFC 3339 timestamp.
	IntervalStart string
	Node          string
	// Component is the LMP_TYPE value, e.g. LMP, MCE, MCC, MCL.
	Component string
	Value     float64
}

// GetHistoricalLMP returns prices for the given day, market and nodes. The
// day runs from midnight to midnight Pacific; nodes defaults to the trading
// hub nodes when empty. Each call issues one OASIS query and then pauses for
// the configured politeness delay.
func (c *CAISO) GetHistoricalLMP(ctx context.Context, date time.Time, market types.Market, nodes []string) ([]types.LMPRow, error) {
	// fail fast before any network traffic
	params, err := market.Params()
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		nodes = TradingHubNodes
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, ptLocation)
	// one calendar day, not 24 hours, so DST transition days stay aligned
	end := start.AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("resultformat", "6")
	q.Set("queryname", params.QueryName)
	q.Set("version", strconv.Itoa(params.Version))
	q.Set("startdatetime", start.UTC().Format(oasisTimeFormat))
	q.Set("enddatetime", end.UTC().Format(oasisTimeFormat))
	q.Set("market_run_id", params.MarketRunID)
	q.Set("node", strings.Join(nodes, ","))

	payload, err := c.fetchZip(ctx, q)
	if err != nil {
		return nil, err
	}

	raw, err := parseLMPArchive(ctx, payload, params.PriceColumn)
	if err != nil {
		return nil, err
	}

	return normalizeLMP(ctx, pivotLMP(raw), market, nodes), nil
}

// GetPnodes returns the pricing node to aggregate node mapping. The mapping
// is not dated, so OASIS is queried with a fixed historical window.
func (c *CAISO) GetPnodes(ctx context.Context) ([]types.Pnode, error) {
	q := url.Values{}
	q.Set("resultformat", "6")
	q.Set("queryname", "ATL_PNODE_MAP")
	q.Set("version", "1")
	q.Set("startdatetime", "20220801T07:00-0000")
	q.Set("enddatetime", "20220802T07:00-0000")
	q.Set("pnode_id", "ALL")

	payload, err := c.fetchZip(ctx, q)
	if err != nil {
		return nil, err
	}

	header, records, err := unpackCSV(payload)
	if err != nil {
		return nil, err
	}
	aggIdx := columnIndex(header, "APNODE_ID")
	idIdx := columnIndex(header, "PNODE_ID")
	if aggIdx < 0 || idIdx < 0 {
		return nil, fmt.Errorf("%w: APNODE_ID, PNODE_ID", ErrMissingColumns)
	}

	nodes := make([]types.Pnode, 0, len(records))
	for _, rec := range records {
		if aggIdx >= len(rec) || idIdx >= len(rec) {
			continue
		}
		nodes = append(nodes, types.Pnode{AggregateID: rec[aggIdx], ID: rec[idIdx]})
	}
	return nodes, nil
}

// fetchZip performs the OASIS GET with bounded retry on non-success status.
// Regardless of outcome it pauses for the politeness delay before returning.
func (c *CAISO) fetchZip(ctx context.Context, query url.Values) ([]byte, error) {
	defer c.pause(ctx, c.oasisDelay)

	u := c.oasisURL + "?" + query.Encode()

	var lastStatus int
	for attempt := 1; attempt <= oasisAttempts; attempt++ {
		if attempt > 1 {
			c.pause(ctx, c.retryWait)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		log.Ctx(ctx).DebugContext(
			ctx,
			"fetching oasis data",
			slog.String("url", u),
			slog.Int("attempt", attempt),
		)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch oasis data: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read oasis response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		lastStatus = resp.StatusCode
		log.Ctx(ctx).ErrorContext(
			ctx,
			"oasis request failed",
			slog.Int("status", resp.StatusCode),
			slog.Int("attempt", attempt),
		)
	}

	return nil, fmt.Errorf("%w: last status %d", ErrRetriesExhausted, lastStatus)
}

// pause sleeps for d unless the context is canceled first.
func (c *CAISO) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// unpackCSV opens the single-member ZIP payload and parses the member as CSV,
// returning the header and data records.
func unpackCSV(payload []byte) ([]string, [][]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	if len(zr.File) == 0 {
		return nil, nil, fmt.Errorf("%w: archive has no members", ErrMalformedArchive)
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse oasis csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty csv", ErrMissingColumns)
	}
	return records[0], records[1:], nil
}

// parseLMPArchive unpacks the OASIS payload and projects it onto the four
// columns the pipeline needs: interval start, node, component type and the
// market-specific price column.
func parseLMPArchive(ctx context.Context, payload []byte, priceColumn string) ([]rawLMPRow, error) {
	header, records, err := unpackCSV(payload)
	if err != nil {
		return nil, err
	}

	timeIdx := columnIndex(header, "INTERVALSTARTTIME_GMT")
	nodeIdx := columnIndex(header, "NODE")
	typeIdx := columnIndex(header, "LMP_TYPE")
	priceIdx := columnIndex(header, priceColumn)
	if timeIdx < 0 || nodeIdx < 0 || typeIdx < 0 || priceIdx < 0 {
		return nil, fmt.Errorf("%w: INTERVALSTARTTIME_GMT, NODE, LMP_TYPE, %s", ErrMissingColumns, priceColumn)
	}

	maxIdx := timeIdx
	for _, i := range []int{nodeIdx, typeIdx, priceIdx} {
		if i > maxIdx {
			maxIdx = i
		}
	}

	rows := make([]rawLMPRow, 0, len(records))
	for _, rec := range records {
		if maxIdx >= len(rec) {
			continue
		}
		value, err := strconv.ParseFloat(rec[priceIdx], 64)
		if err != nil {
			log.Ctx(ctx).WarnContext(
				ctx,
				"failed to parse oasis price value",
				slog.String("value", rec[priceIdx]),
				slog.String("node", rec[nodeIdx]),
				slog.Any("error", err),
			)
			continue
		}
		rows = append(rows, rawLMPRow{
			IntervalStart: rec[timeIdx],
			Node:          rec[nodeIdx],
			Component:     rec[typeIdx],
			Value:         value,
		})
	}
	return rows, nil
}
