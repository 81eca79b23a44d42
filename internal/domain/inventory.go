package domain

import "time"

// InventoryRecord is the unit counter for one blood group. Units never go negative.
type InventoryRecord struct {
	BloodGroup  BloodGroup `json:"bloodGroup"`
	Units       int        `json:"units"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// AdminStats aggregates dashboard counters.
type AdminStats struct {
	Donors  int64
	Units   int64
	Pending int64
}
