// Package analytics is the filter-and-aggregate core of the dashboard.
//
// Every function here is pure: it reads a slice of match records that was
// loaded once at startup and returns new values without touching its input.
// The HTTP, websocket and CLI layers all call the same three operations:
//
//	filtered := analytics.Filter(records, selection)
//	kpis := analytics.ComputeKPIs(filtered)
//	series := analytics.GroupedWinRate(filtered)
//
// Empty inputs are valid everywhere and produce zero KPIs and an empty series.
package analytics
