// Package distress computes a 0-100 financial distress score for a listed
// company from its last eight fiscal quarters of income, balance sheet and
// cash flow statements.
//
// # Core Components
//
// The score blends three classic accounting models:
//
//  1. Altman Z: bankruptcy risk, normalized per quarter and recency weighted (max 40)
//  2. Piotroski F: nine fundamental strength signals plus earnings momentum (max 35)
//  3. Beneish M: earnings manipulation risk from year-over-year indices (max 25)
//
// The base sum is scaled by an interaction multiplier, damped by revenue and
// earnings volatility, and squashed onto 0-100 with a logistic curve centred
// on 50. Higher scores mean a healthier company.
//
// # Pipeline
//
//   - calendar.go: the fixed eight-quarter window
//   - align.go: matching statement records to calendar quarters
//   - features.go: per-quarter derived values with field aliases
//   - altman.go, piotroski.go, beneish.go: the three submodels
//   - combine.go: interaction, volatility and final squashing
//   - engine.go: orchestration, tracing, metrics and batch scoring
//   - persist.go: CSV, Excel and text summary output
//
// An entity that cannot be scored is never an error. It produces an
// Insufficient outcome carrying the neutral score of 50.
//
// # Usage Example
//
//	engine := distress.NewEngine(distress.DefaultCalendar(), slog.Default())
//
//	out := engine.Score(ctx, set)
//	switch o := out.(type) {
//	case distress.Scored:
//	    fmt.Println(o.Result.DistressScore, o.Diagnostics.AltmanZone)
//	case distress.Insufficient:
//	    fmt.Println("neutral:", o.Reason)
//	}
package distress
