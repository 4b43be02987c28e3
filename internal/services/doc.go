// Package services implements the business logic layer of the Asia Cup
// analytics service. It sits between the transports (HTTP, websocket, CLI)
// and the dataset, so every transport sees the same filtering rules.
//
// # Available Services
//
//	- DashboardService: resolves filter requests, computes KPIs, the grouped
//	  win-rate series and full dashboard views, and writes exports
//	- HealthService: health, readiness, liveness and version reporting
//
// # Request Model
//
// Every call recomputes from the cached dataset. A FilterRequest dimension
// that is nil defaults to every available value; an empty list selects
// nothing:
//
//	view, err := svc.View(ctx, api.FilterRequest{Years: []int{2023}}, services.SourceHTTP)
//
// # Error Handling
//
// Services return sentinel errors that handlers translate into problem
// responses:
//
//	- ErrDatasetNotLoaded when the dataset could not be read
//	- ErrInvalidSelection (as *SelectionError) for invalid filter values
//	- ErrUnsupportedFormat for an unknown export format
//	- ErrPanelNotFound for an unknown panel id
package services
