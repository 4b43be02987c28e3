// Package http implements the HTTP handlers of the Asia Cup analytics service.
// Handlers only parse requests, call the service layer and shape responses;
// filtering and aggregation live in the services package.
//
// # Endpoints
//
//	GET  /api/dashboard/options              distinct years, teams, opponents
//	GET  /api/dashboard/view                 full dashboard for a selection
//	POST /api/dashboard/view                 same, selection as a JSON body
//	GET  /api/dashboard/kpis                 headline metrics
//	GET  /api/dashboard/win-rate             win rate per (year, team)
//	GET  /api/dashboard/matches              the filtered records
//	GET  /api/dashboard/export/filtered.csv  download of the filtered subset
//	GET  /api/dashboard/export/filtered.xlsx workbook of the filtered subset
//	GET  /api/dashboard/export/full.csv      download of the whole dataset
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//
// # Selections
//
// The year, team and opponent query parameters may be repeated, and years
// may also be comma separated. Team and opponent values are used verbatim,
// commas included. An absent parameter selects every value; a present but
// empty one selects nothing:
//
//	/api/dashboard/view?year=2022,2023&team=India
//	/api/dashboard/kpis?opponent=
//
// # Responses
//
// Successful JSON responses use the envelope {"status": "success", "data": ...}.
// Errors are RFC 7807 problem documents rendered by errors.ErrorHandler.
package http
