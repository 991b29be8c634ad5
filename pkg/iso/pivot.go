package iso

import (
	"context"
	"log/slog"
	"time"

	"github.com/gsheni/gridstatus/pkg/log"
	"github.com/gsheni/gridstatus/pkg/types"
)

// wideLMPRow is one (interval, node) pair with a column per price component
// observed in the table.
type wideLMPRow struct {
	IntervalStart string
	Node          string
	Components    map[string]float64
}

// pivotLMP reshapes the long-format price table into one row per
// (interval, node). Row order follows first appearance in the input. If
// duplicate (interval, node, component) records exist the first one wins and
// later duplicates are discarded.
func pivotLMP(rows []rawLMPRow) []wideLMPRow {
	type key struct {
		interval string
		node     string
	}

	index := make(map[key]int)
	out := make([]wideLMPRow, 0, len(rows))
	for _, r := range rows {
		k := key{interval: r.IntervalStart, node: r.Node}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, wideLMPRow{
				IntervalStart: r.IntervalStart,
				Node:          r.Node,
				Components:    make(map[string]float64),
			})
		}
		if _, dup := out[i].Components[r.Component]; !dup {
			out[i].Components[r.Component] = r.Value
		}
	}
	return out
}

// normalizeLMP maps the pivoted table onto the canonical row shape: the four
// known components become LMP, Energy, Congestion and Loss (anything else is
// dropped), timestamps move to Pacific, every row is tagged with the
// requested market, and only the requested nodes are kept.
func normalizeLMP(ctx context.Context, rows []wideLMPRow, market types.Market, nodes []string) []types.LMPRow {
	requested := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		requested[n] = true
	}

	out := make([]types.LMPRow, 0, len(rows))
	for _, r := range rows {
		// OASIS can return nodes beyond the ones asked for
		if !requested[r.Node] {
			continue
		}
		ts, err := time.Parse(time.RFC3339, r.IntervalStart)
		if err != nil {
			log.Ctx(ctx).WarnContext(
				ctx,
				"failed to parse oasis interval start",
				slog.String("value", r.IntervalStart),
				slog.Any("error", err),
			)
			continue
		}
		out = append(out, types.LMPRow{
			Time:       ts.In(ptLocation),
			Market:     market,
			Node:       r.Node,
			LMP:        r.Components["LMP"],
			Energy:     r.Components["MCE"],
			Congestion: r.Components["MCC"],
			Loss:       r.Components["MCL"],
		})
	}
	return out
}
