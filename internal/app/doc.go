// Package app wires the Asia Cup analytics service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Resolve configured paths and create the exports and logs directories
//  2. Initialize logging and OpenTelemetry
//  3. Load the match dataset; a load failure aborts startup
//  4. Build the dashboard and health services and start the websocket hub
//  5. Mount the HTTP routes behind the middleware chain
//
// # Routes
//
//	/api/health, /api/health/ready, /api/health/live, /api/version
//	/api/dashboard/...   options, view, kpis, win-rate, matches, panels, exports
//	/ws/dashboard        live filter session
//	/metrics             Prometheus exposition
//
// # Usage
//
//	app, err := app.NewApplication(cfg, app.Options{})
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
package app
