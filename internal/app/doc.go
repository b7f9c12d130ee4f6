// Package app wires the distress scoring engine into the HTTP service and
// manages its lifecycle.
//
// # Initialization Flow
//
// The caller loads configuration and initializes logging and telemetry, then:
//
//	1. NewApplication builds the quarter calendar and the engine
//	2. Engine metrics are registered on the telemetry meter
//	3. The chi router is assembled with the middleware chain
//	4. The http.Server is configured from the server timeouts
//
// # Middleware Order
//
//	RequestID → OTel → Logger → Recoverer → Timeout → RateLimit
//
// Routes under /api/v1 additionally enforce the body size limit and a JSON
// content type.
//
// # Usage
//
//	app, err := app.NewApplication(cfg, logger, providers)
//	if err != nil {
//	    return err
//	}
//	return app.Run()
package app
