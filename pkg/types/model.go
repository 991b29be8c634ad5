package types

import "time"

// GridStatus represents the current operating state of the grid.
type GridStatus struct {
	Time     time.Time `json:"time"`
	Status   string    `json:"status"`
	Reserves float64   `json:"reserves"`
	ISO      string    `json:"iso"`
}

// FuelMix is a single snapshot of generation by fuel in MW.
type FuelMix struct {
	Time time.Time          `json:"time"`
	Mix  map[string]float64 `json:"mix"`
	ISO  string             `json:"iso"`
}

// FuelMixRow is one 5-minute interval of generation by fuel in MW.
type FuelMixRow struct {
	Time time.Time          `json:"time"`
	Mix  map[string]float64 `json:"mix"`
}

// DemandRow is one 5-minute interval of system demand in MW.
type DemandRow struct {
	Time   time.Time `json:"time"`
	Demand float64   `json:"demand"`
}

// SupplyRow is one 5-minute interval of total supply in MW.
type SupplyRow struct {
	Time   time.Time `json:"time"`
	Supply float64   `json:"supply"`
}

// LMPRow is one normalized locational marginal price record for a
// (time, node) pair. LMP is the total price; Energy, Congestion and Loss are
// its components.
type LMPRow struct {
	Time       time.Time `json:"time"`
	Market     Market    `json:"market"`
	Node       string    `json:"node"`
	LMP        float64   `json:"lmp"`
	Energy     float64   `json:"energy"`
	Congestion float64   `json:"congestion"`
	Loss       float64   `json:"loss"`
}

// LMPColumns is the canonical column order for normalized LMP output.
var LMPColumns = []string{"Time", "Market", "Node", "LMP", "Energy", "Congestion", "Loss"}

// Pnode maps a pricing node to its aggregate node.
type Pnode struct {
	AggregateID string `json:"aggregatePnodeID"`
	ID          string `json:"pnodeID"`
}
