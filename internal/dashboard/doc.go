// Package dashboard shapes a filtered match subset into chart-ready panels.
//
// Each panel is a projection of the subset onto the columns one chart needs,
// plus the declarative options a client-side charting library expects (kind,
// axes, color, animation frame, bar mode). Panels never sort, aggregate or
// drop outliers; the only row removal is of rows missing a value the chart
// cannot draw without. An empty panel carries a message instead of rows.
package dashboard
