package models

// BusCapacity is the fixed seat threshold a bus is flagged at. It is a UI
// warning constant, not a persisted attribute of a bus.
const BusCapacity = 48

// BusUserCount is one row of the occupancy report, in the same position as
// its bus in the institute's Busses list.
type BusUserCount struct {
	BusName      string `json:"busName"`
	UserCount    int64  `json:"userCount"`
	OverCapacity bool   `json:"overCapacity"`
}

// OccupancyReport is the derived per-session aggregate; it is never persisted.
type OccupancyReport struct {
	Buses       []BusUserCount `json:"buses"`
	MaleCount   int64          `json:"maleCount"`
	FemaleCount int64          `json:"femaleCount"`
	Total       int64          `json:"total"`
}
