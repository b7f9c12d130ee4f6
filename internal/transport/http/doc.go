// Package http exposes the distress engine over a chi router.
//
// # Endpoints
//
//	GET  /healthz                   liveness, version and the scoring calendar
//	GET  /metrics                   Prometheus exposition (when metrics are enabled)
//	GET  /api/v1/distress/calendar  the quarters every score is assessed over
//	POST /api/v1/distress/score     one StatementSet in, one DistressReport out
//	POST /api/v1/distress/batch     {"sets": [...]} in, reports in request order out
//
// Handlers stay thin: they decode, validate with the statement validator and
// delegate to a Scorer. Every failure is rendered as RFC 7807 problem details
// by the shared ErrorHandler. A set that cannot be scored is not a failure;
// it comes back as a 200 with status "insufficient" and the neutral score.
package http
